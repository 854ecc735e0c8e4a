package cache

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingCleaner struct {
	calls int64
}

func (c *countingCleaner) CleanExpired() int {
	atomic.AddInt64(&c.calls, 1)
	return 0
}

func TestManagerSweepsRegisteredCaches(t *testing.T) {
	m := NewManager()
	c := &countingCleaner{}
	m.Register(c)

	m.StartCleanup(5 * time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	m.Stop()

	if atomic.LoadInt64(&c.calls) == 0 {
		t.Fatalf("expected at least one sweep")
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Register(&countingCleaner{})

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop blocked without a running cleanup loop")
	}
}
