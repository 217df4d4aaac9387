package face

import "time"

// Clock is the hour and minute shown on the face.
type Clock struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// ClockOf returns the hour and minute of t in t's location.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// Inc advances c by one minute, wrapping 23:59 to 00:00.
func (c *Clock) Inc() {
	c.Minute++
	if c.Minute >= 60 {
		c.Minute = 0
		c.Hour++
		if c.Hour >= 24 {
			c.Hour = 0
		}
	}
}

// Dec moves c back one minute, wrapping 00:00 to 23:59.
func (c *Clock) Dec() {
	c.Minute--
	if c.Minute < 0 {
		c.Minute = 59
		c.Hour--
		if c.Hour < 0 {
			c.Hour = 23
		}
	}
}
