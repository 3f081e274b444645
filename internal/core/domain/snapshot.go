package domain

// SlotID identifies one position in the circular record store.
//
// Slot ids are 1-based and cyclic: the slot after the store's capacity
// wraps back to 1. SlotNone (0) is reserved and means "no slot".
type SlotID uint16

// SlotNone is the reserved "no result" slot id.
const SlotNone SlotID = 0

// Next returns the slot following s in a store of the given capacity.
func (s SlotID) Next(capacity uint16) SlotID {
	if uint16(s) >= capacity {
		return 1
	}
	return s + 1
}

// Prev returns the slot preceding s in a store of the given capacity.
func (s SlotID) Prev(capacity uint16) SlotID {
	if s <= 1 {
		return SlotID(capacity)
	}
	return s - 1
}

// TimeOrder is the snapshot header. Both fields are assigned by the
// record store at write time, never by the snapshot producer.
type TimeOrder struct {
	// Timestamp is seconds since the Unix epoch at write time.
	Timestamp uint32

	// DataPosition is the slot id the record was written into, stored
	// redundantly inside the payload so a record is self-describing.
	DataPosition uint16
}

// OBCTelemetry is the onboard-computer housekeeping record.
type OBCTelemetry struct {
	BootCount     uint16
	ResetReason   uint8
	ModeFlags     uint8
	UptimeSeconds uint32
	CPUTemp       int16 // centi-degrees C
	PCBTemp       int16 // centi-degrees C
	HeapFree      uint32
	LastTaskTick  uint32
}

// EPSTelemetry is the electrical power system housekeeping record.
type EPSTelemetry struct {
	BatteryVoltage uint16 // mV
	BatteryCurrent int16  // mA, negative while discharging
	BatteryTemp    int16  // centi-degrees C
	PanelVoltage   [6]uint16
	PanelCurrent   [6]int16
	OutputStatus   uint16 // bitmask, one bit per switched output
	OutputCurrent  [10]uint16
	ChargeState    uint8
	BrownoutCount  uint8
}

// UHFTelemetry is the UHF transceiver housekeeping record.
type UHFTelemetry struct {
	RSSI           int16
	SNRLast        int16
	RxPackets      uint32
	TxPackets      uint32
	RxBytes        uint32
	TxBytes        uint32
	FrequencyError int16
	PATemp         int16 // centi-degrees C
	BeaconPeriod   uint16
	BootCount      uint16
}

// SBandTelemetry is the S-band transmitter housekeeping record.
type SBandTelemetry struct {
	PATemp      int16
	TopTemp     int16
	BottomTemp  int16
	BatCurrent  int16
	BatVoltage  uint16
	PACurrent   uint16
	PAVoltage   uint16
	OutputPower uint16
	SymbolRate  uint32
	Underruns   uint16
	Overruns    uint16
}

// Snapshot is one complete housekeeping record: the store-assigned
// header followed by one telemetry record per subsystem.
//
// The field order here is the canonical record order. The codec package
// derives the persisted and wire layouts from this order; it must never
// change between a write and the read that follows it.
type Snapshot struct {
	TimeOrder TimeOrder
	OBC       OBCTelemetry
	EPS       EPSTelemetry
	UHF       UHFTelemetry
	SBand     SBandTelemetry
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	return &out
}
