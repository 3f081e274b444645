package codec

import "github.com/calliope-space/telemhist/internal/core/domain"

// Per-subsystem section sizes in bytes.
const (
	timeOrderSize = 6
	obcSize       = 20
	epsSize       = 54
	uhfSize       = 28
	sbandSize     = 24
)

func encodeTimeOrder(s *domain.Snapshot, b []byte) {
	c := cursor{b: b}
	c.putU32(s.TimeOrder.Timestamp)
	c.putU16(s.TimeOrder.DataPosition)
}

func decodeTimeOrder(s *domain.Snapshot, b []byte) {
	c := cursor{b: b}
	s.TimeOrder.Timestamp = c.u32()
	s.TimeOrder.DataPosition = c.u16()
}

func encodeOBC(s *domain.Snapshot, b []byte) {
	c := cursor{b: b}
	c.putU16(s.OBC.BootCount)
	c.putU8(s.OBC.ResetReason)
	c.putU8(s.OBC.ModeFlags)
	c.putU32(s.OBC.UptimeSeconds)
	c.putI16(s.OBC.CPUTemp)
	c.putI16(s.OBC.PCBTemp)
	c.putU32(s.OBC.HeapFree)
	c.putU32(s.OBC.LastTaskTick)
}

func decodeOBC(s *domain.Snapshot, b []byte) {
	c := cursor{b: b}
	s.OBC.BootCount = c.u16()
	s.OBC.ResetReason = c.u8()
	s.OBC.ModeFlags = c.u8()
	s.OBC.UptimeSeconds = c.u32()
	s.OBC.CPUTemp = c.i16()
	s.OBC.PCBTemp = c.i16()
	s.OBC.HeapFree = c.u32()
	s.OBC.LastTaskTick = c.u32()
}

func encodeEPS(s *domain.Snapshot, b []byte) {
	c := cursor{b: b}
	c.putU16(s.EPS.BatteryVoltage)
	c.putI16(s.EPS.BatteryCurrent)
	c.putI16(s.EPS.BatteryTemp)
	for _, v := range s.EPS.PanelVoltage {
		c.putU16(v)
	}
	for _, v := range s.EPS.PanelCurrent {
		c.putI16(v)
	}
	c.putU16(s.EPS.OutputStatus)
	for _, v := range s.EPS.OutputCurrent {
		c.putU16(v)
	}
	c.putU8(s.EPS.ChargeState)
	c.putU8(s.EPS.BrownoutCount)
}

func decodeEPS(s *domain.Snapshot, b []byte) {
	c := cursor{b: b}
	s.EPS.BatteryVoltage = c.u16()
	s.EPS.BatteryCurrent = c.i16()
	s.EPS.BatteryTemp = c.i16()
	for i := range s.EPS.PanelVoltage {
		s.EPS.PanelVoltage[i] = c.u16()
	}
	for i := range s.EPS.PanelCurrent {
		s.EPS.PanelCurrent[i] = c.i16()
	}
	s.EPS.OutputStatus = c.u16()
	for i := range s.EPS.OutputCurrent {
		s.EPS.OutputCurrent[i] = c.u16()
	}
	s.EPS.ChargeState = c.u8()
	s.EPS.BrownoutCount = c.u8()
}

func encodeUHF(s *domain.Snapshot, b []byte) {
	c := cursor{b: b}
	c.putI16(s.UHF.RSSI)
	c.putI16(s.UHF.SNRLast)
	c.putU32(s.UHF.RxPackets)
	c.putU32(s.UHF.TxPackets)
	c.putU32(s.UHF.RxBytes)
	c.putU32(s.UHF.TxBytes)
	c.putI16(s.UHF.FrequencyError)
	c.putI16(s.UHF.PATemp)
	c.putU16(s.UHF.BeaconPeriod)
	c.putU16(s.UHF.BootCount)
}

func decodeUHF(s *domain.Snapshot, b []byte) {
	c := cursor{b: b}
	s.UHF.RSSI = c.i16()
	s.UHF.SNRLast = c.i16()
	s.UHF.RxPackets = c.u32()
	s.UHF.TxPackets = c.u32()
	s.UHF.RxBytes = c.u32()
	s.UHF.TxBytes = c.u32()
	s.UHF.FrequencyError = c.i16()
	s.UHF.PATemp = c.i16()
	s.UHF.BeaconPeriod = c.u16()
	s.UHF.BootCount = c.u16()
}

func encodeSBand(s *domain.Snapshot, b []byte) {
	c := cursor{b: b}
	c.putI16(s.SBand.PATemp)
	c.putI16(s.SBand.TopTemp)
	c.putI16(s.SBand.BottomTemp)
	c.putI16(s.SBand.BatCurrent)
	c.putU16(s.SBand.BatVoltage)
	c.putU16(s.SBand.PACurrent)
	c.putU16(s.SBand.PAVoltage)
	c.putU16(s.SBand.OutputPower)
	c.putU32(s.SBand.SymbolRate)
	c.putU16(s.SBand.Underruns)
	c.putU16(s.SBand.Overruns)
}

func decodeSBand(s *domain.Snapshot, b []byte) {
	c := cursor{b: b}
	s.SBand.PATemp = c.i16()
	s.SBand.TopTemp = c.i16()
	s.SBand.BottomTemp = c.i16()
	s.SBand.BatCurrent = c.i16()
	s.SBand.BatVoltage = c.u16()
	s.SBand.PACurrent = c.u16()
	s.SBand.PAVoltage = c.u16()
	s.SBand.OutputPower = c.u16()
	s.SBand.SymbolRate = c.u32()
	s.SBand.Underruns = c.u16()
	s.SBand.Overruns = c.u16()
}
