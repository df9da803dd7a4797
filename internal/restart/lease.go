package restart

import (
	"sync"
	"time"
)

// IntervalSetter is the polling interval half of the scheduler.
type IntervalSetter interface {
	Interval() time.Duration
	SetInterval(d time.Duration)
}

// IntervalLease is temporary ownership of the scheduler's polling interval.
// The original value is captured on acquire and put back by Release, at most
// once however many times Release is called.
type IntervalLease struct {
	setter   IntervalSetter
	original time.Duration
	once     sync.Once
}

// AcquireInterval saves the current interval of s and replaces it with d.
func AcquireInterval(s IntervalSetter, d time.Duration) *IntervalLease {
	l := &IntervalLease{setter: s, original: s.Interval()}
	s.SetInterval(d)
	return l
}

// Original returns the interval that Release restores.
func (l *IntervalLease) Original() time.Duration {
	return l.original
}

// Release restores the original interval. It reports whether this call did
// the restore.
func (l *IntervalLease) Release() bool {
	restored := false
	l.once.Do(func() {
		l.setter.SetInterval(l.original)
		restored = true
	})
	return restored
}
