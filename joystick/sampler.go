package joystick

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// AxisReader reads both axes in one bus transaction, giving up after
// timeout.
type AxisReader interface {
	ReadAxes(timeout time.Duration) (x, y uint16, err error)
}

const (
	DefaultReadBudget   = 10 * time.Millisecond
	DefaultReadAttempt  = 1 * time.Millisecond
	DefaultReadRetryGap = 1 * time.Millisecond
)

// Sampler retries a failed read until Budget is spent and then reports the
// stick at rest, so a bus fault never stalls the caller for longer than
// Budget plus one attempt.
type Sampler struct {
	Reader   AxisReader
	Budget   time.Duration
	Attempt  time.Duration
	RetryGap time.Duration

	now   func() time.Time
	sleep func(time.Duration)

	failures uint32
}

func NewSampler(r AxisReader) *Sampler {
	return &Sampler{
		Reader:   r,
		Budget:   DefaultReadBudget,
		Attempt:  DefaultReadAttempt,
		RetryGap: DefaultReadRetryGap,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Sample returns the axes and whether they came from the device. On failure
// the pair is (Center, Center).
func (s *Sampler) Sample() (x, y uint16, ok bool) {
	start := s.now()
	var err error
	for tries := 0; ; tries++ {
		x, y, err = s.Reader.ReadAxes(s.Attempt)
		if err == nil {
			if s.failures > 0 {
				log.WithField("failed_samples", s.failures).Debug("joystick read recovered")
				s.failures = 0
			}
			return x, y, true
		}
		if s.now().Sub(start) >= s.Budget {
			s.failures++
			log.WithFields(log.Fields{"tries": tries + 1, "err": err}).Debug("joystick read failed, using center")
			return Center, Center, false
		}
		s.sleep(s.RetryGap)
	}
}

// Failures is the number of consecutive samples that fell back to center.
func (s *Sampler) Failures() uint32 {
	return s.failures
}
