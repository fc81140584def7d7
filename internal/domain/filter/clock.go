package filter

import (
	"sync/atomic"
	"time"
)

// Clock supplies the current server time.
type Clock interface {
	Now() Millis
}

// ServerClock counts milliseconds since it was created, like a game server's
// simulation time.
type ServerClock struct {
	start time.Time
}

func NewServerClock() *ServerClock { return &ServerClock{start: time.Now()} }

func (c *ServerClock) Now() Millis {
	return Millis(time.Since(c.start).Milliseconds())
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	now atomic.Int64
}

func NewManualClock(start Millis) *ManualClock {
	c := &ManualClock{}
	c.now.Store(int64(start))
	return c
}

func (c *ManualClock) Now() Millis { return Millis(c.now.Load()) }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now.Add(d.Milliseconds())
}

// Set jumps the clock to t.
func (c *ManualClock) Set(t Millis) { c.now.Store(int64(t)) }
