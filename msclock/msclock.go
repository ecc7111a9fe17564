// Package msclock is the millisecond tick source of the input loop. The
// value wraps after about 49.7 days; consumers compare with unsigned
// subtraction.
package msclock

import "time"

type Clock struct {
	start time.Time
	base  uint32
}

func New() *Clock {
	return &Clock{start: time.Now()}
}

// Starting returns a clock that reads base now. Used to exercise wrap.
func Starting(base uint32) *Clock {
	return &Clock{start: time.Now(), base: base}
}

func (c *Clock) Now() uint32 {
	return c.base + uint32(time.Since(c.start).Milliseconds())
}
