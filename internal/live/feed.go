package live

import (
	"context"
	"sync"
)

// DefaultFeedSize bounds the in-memory alert history.
const DefaultFeedSize = 256

// Feed keeps the most recent alerts and numbers them with a monotonically
// increasing sequence so clients can poll for what they have not seen.
type Feed struct {
	mu   sync.RWMutex
	buf  []Alert
	size int
	seq  uint64
}

// NewFeed returns a feed holding at most size alerts.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{size: size, buf: make([]Alert, 0, size)}
}

// Publish appends alerts, assigning sequence numbers. It never fails.
func (f *Feed) Publish(_ context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, alert := range alerts {
		f.seq++
		alert.Seq = f.seq
		f.buf = append(f.buf, alert)
	}
	if over := len(f.buf) - f.size; over > 0 {
		f.buf = append(f.buf[:0:0], f.buf[over:]...)
	}
	return nil
}

// Since returns alerts with a sequence greater than after, oldest first.
func (f *Feed) Since(after uint64) []Alert {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Alert, 0)
	for _, alert := range f.buf {
		if alert.Seq > after {
			out = append(out, alert)
		}
	}
	return out
}

// Seq returns the latest assigned sequence number.
func (f *Feed) Seq() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.seq
}
