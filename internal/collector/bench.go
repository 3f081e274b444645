package collector

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/calliope-space/telemhist/internal/core/domain"
)

// BenchSampler fabricates plausible subsystem telemetry for flatsat
// bench runs and tests. Flight builds replace it with a Sampler backed
// by the hardware abstraction layer.
type BenchSampler struct {
	cycle atomic.Uint32
}

// NewBenchSampler creates a bench sampler.
func NewBenchSampler() *BenchSampler {
	return &BenchSampler{}
}

// Sample returns a synthetic snapshot. Values drift deterministically
// with the cycle counter so consecutive records differ.
func (b *BenchSampler) Sample(_ context.Context) (*domain.Snapshot, error) {
	n := b.cycle.Add(1)
	phase := float64(n) / 16.0
	wobble := func(base, amp float64) int16 {
		return int16(base + amp*math.Sin(phase))
	}

	snap := &domain.Snapshot{
		OBC: domain.OBCTelemetry{
			BootCount:     12,
			ResetReason:   0x01,
			ModeFlags:     0x04,
			UptimeSeconds: n * 30,
			CPUTemp:       wobble(310, 25), // decidegrees C
			PCBTemp:       wobble(280, 20),
			HeapFree:      96_000 - (n%64)*128,
			LastTaskTick:  n * 3000,
		},
		EPS: domain.EPSTelemetry{
			BatteryVoltage: uint16(7900 + (n%40)*5), // mV
			BatteryCurrent: wobble(-120, 400),       // mA
			BatteryTemp:    wobble(150, 40),
			OutputStatus:   0x03FF,
			ChargeState:    uint8(2 + n%2),
			BrownoutCount:  0,
		},
		UHF: domain.UHFTelemetry{
			RSSI:           wobble(-980, 60), // dBm x10
			SNRLast:        wobble(85, 30),
			RxPackets:      n * 3,
			TxPackets:      n * 7,
			RxBytes:        n * 192,
			TxBytes:        n * 1400,
			FrequencyError: wobble(0, 12),
			PATemp:         wobble(330, 50),
			BeaconPeriod:   60,
			BootCount:      4,
		},
		SBand: domain.SBandTelemetry{
			PATemp:      wobble(350, 80),
			TopTemp:     wobble(250, 30),
			BottomTemp:  wobble(240, 30),
			BatCurrent:  wobble(-40, 200),
			BatVoltage:  uint16(7900 + (n%40)*5),
			PACurrent:   uint16(20 + n%500),
			PAVoltage:   5000,
			OutputPower: uint16(270 + n%30),
			SymbolRate:  500_000,
			Underruns:   0,
			Overruns:    0,
		},
	}

	for i := range snap.EPS.PanelVoltage {
		snap.EPS.PanelVoltage[i] = uint16(4600 + 40*i)
		snap.EPS.PanelCurrent[i] = wobble(float64(300-30*i), 90)
	}
	for i := range snap.EPS.OutputCurrent {
		snap.EPS.OutputCurrent[i] = uint16(15 * (i + 1))
	}

	return snap, nil
}
