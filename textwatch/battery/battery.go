// Package battery samples the supply voltage through the RP2040 ADC with
// throttling and caching, and reports charge changes to the face.
package battery

import (
	"machine"
	"time"

	"github.com/harveysanders/picowatch/textwatch/indicator"
)

const (
	max16Bit uint32 = 65535 // ADC readings are scaled to 16 bits.
	refMV    uint32 = 3300  // ADC reference in millivolts.
	divider  uint32 = 3     // VSYS reaches ADC3 through a 1/3 divider.
)

// Sensor reads VSYS on ADC3 (GPIO29). On the Pico W that pin is shared
// with the radio's SPI clock, so reads are kept rare.
type Sensor struct {
	adc             machine.ADC
	cachedMV        uint16        // Last reading in millivolts.
	lastReadTime    time.Time     // When cachedMV was read.
	minReadInterval time.Duration // Reads inside the interval return the cache.
	hasValidCache   bool
}

// New configures the ADC and returns a sensor that reads at most once per
// minReadInterval.
func New(minReadInterval time.Duration) *Sensor {
	machine.InitADC()
	adc := machine.ADC{Pin: machine.ADC3}
	adc.Configure(machine.ADCConfig{})
	return &Sensor{adc: adc, minReadInterval: minReadInterval}
}

// Millivolts returns the supply voltage and whether it came from the cache.
func (s *Sensor) Millivolts() (mv uint16, isCached bool) {
	now := time.Now()
	if s.hasValidCache && now.Sub(s.lastReadTime) < s.minReadInterval {
		return s.cachedMV, true
	}
	raw := uint32(s.adc.Get())
	s.cachedMV = uint16(raw * refMV * divider / max16Bit)
	s.lastReadTime = now
	s.hasValidCache = true
	return s.cachedMV, false
}

// Poster accepts battery events.
type Poster interface {
	PostBattery(percent uint8, charging bool)
}

// Watch samples every interval and posts a level whenever the 10% step
// changes. It never returns.
func (s *Sensor) Watch(interval time.Duration, p Poster) {
	last := uint8(255)
	for {
		mv, cached := s.Millivolts()
		if !cached {
			if pct := indicator.Percent(mv); pct != last {
				last = pct
				// Above a full cell means USB power is connected.
				p.PostBattery(pct, mv > indicator.FullMillivolts)
			}
		}
		time.Sleep(interval)
	}
}
