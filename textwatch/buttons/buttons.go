// Package buttons turns presses on two active-low push buttons into clock
// adjustments.
package buttons

import (
	"machine"
	"time"
)

const (
	pollInterval = 10 * time.Millisecond
	debounce     = 30 * time.Millisecond
)

// Adjuster receives a +1 or -1 minute step per press.
type Adjuster interface {
	PostAdjust(delta int)
}

// Poll watches up and down (pulled up, pressed = low) and calls a once per
// press. It never returns.
func Poll(up, down machine.Pin, a Adjuster) {
	up.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	down.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	pressed := func() int {
		switch {
		case !up.Get():
			return 1
		case !down.Get():
			return -1
		}
		return 0
	}

	for {
		delta := pressed()
		if delta == 0 {
			time.Sleep(pollInterval)
			continue
		}
		time.Sleep(debounce)
		if pressed() != delta {
			continue
		}
		a.PostAdjust(delta)
		// Wait for release.
		for pressed() != 0 {
			time.Sleep(pollInterval)
		}
	}
}
