package recovery

import (
	"errors"

	"rtcfix/save"
)

// Clock is the cartridge real-time clock.
type Clock interface {
	Read() (save.Time, error)
	// StartReset begins setting the clock back to day zero; Busy is true until it lands.
	StartReset() error
	Busy() bool
}

var ErrClockMissing = errors.New("recovery: cartridge clock not responding")

// SoftClock is a Clock held in memory. ResetTicks is how many Busy polls a reset takes.
type SoftClock struct {
	Now        save.Time
	ResetTicks int
	Missing    bool

	pending int
}

func (c *SoftClock) Read() (save.Time, error) {
	if c.Missing {
		return save.Time{}, ErrClockMissing
	}
	return c.Now, nil
}

func (c *SoftClock) StartReset() error {
	if c.Missing {
		return ErrClockMissing
	}
	c.pending = c.ResetTicks
	return nil
}

func (c *SoftClock) Busy() bool {
	if c.pending > 0 {
		c.pending--
		return true
	}
	c.Now = save.Time{}
	return false
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

func seconds(t save.Time) int64 {
	return int64(t.Days)*secondsPerDay +
		int64(t.Hours)*secondsPerHour +
		int64(t.Minutes)*secondsPerMinute +
		int64(t.Seconds)
}

// fromSeconds normalizes s into a Time. Game time never runs backwards, so negative spans
// clamp to zero.
func fromSeconds(s int64) save.Time {
	if s < 0 {
		s = 0
	}
	return save.Time{
		Days:    uint16(s / secondsPerDay),
		Hours:   int8(s % secondsPerDay / secondsPerHour),
		Minutes: int8(s % secondsPerHour / secondsPerMinute),
		Seconds: int8(s % secondsPerMinute),
	}
}
