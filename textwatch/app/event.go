package app

import (
	"time"

	"github.com/harveysanders/picowatch/textwatch/configsync"
)

// Event is something the event loop reacts to.
type Event interface {
	isEvent()
}

// Tick carries the wall clock once per minute, or after a time sync.
type Tick struct{ Time time.Time }

// Adjust moves the manual clock by Delta minutes.
type Adjust struct{ Delta int }

// ConfigChanged is a remote configuration update.
type ConfigChanged struct{ Update configsync.Update }

// BatteryLevel is a new battery reading.
type BatteryLevel struct {
	Percent  uint8
	Charging bool
}

// Link reports the companion connection state.
type Link struct{ Connected bool }

func (Tick) isEvent()          {}
func (Adjust) isEvent()        {}
func (ConfigChanged) isEvent() {}
func (BatteryLevel) isEvent()  {}
func (Link) isEvent()          {}
