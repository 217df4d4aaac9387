package app

import "time"

// untilNextMinute returns the wait from now to the next whole minute.
func untilNextMinute(now time.Time) time.Duration {
	return now.Truncate(time.Minute).Add(time.Minute).Sub(now)
}

// RunClock posts a Tick at the start of every minute until stop is closed.
// The wait is recomputed from the wall clock each time, so a time sync moves
// the next tick with it.
func (a *App) RunClock(stop <-chan struct{}) {
	for {
		timer := time.NewTimer(untilNextMinute(time.Now()))
		select {
		case <-timer.C:
			a.Post(Tick{Time: time.Now()})
		case <-stop:
			timer.Stop()
			return
		}
	}
}
