package model

import (
	"sync"
	"time"
)

// Clock is one side's chess clock. Time only runs between Start and Stop.
type Clock struct {
	mu          sync.Mutex
	timeLeft    time.Duration
	lastStarted time.Time // When the clock was last started
	isRunning   bool
	now         func() time.Time
}

func NewClock(initialTime time.Duration) *Clock {
	return &Clock{
		timeLeft:  initialTime,
		isRunning: false,
		now:       time.Now,
	}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = c.now()
		c.isRunning = true
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.timeLeft -= c.now().Sub(c.lastStarted)
		c.isRunning = false
	}
}

func (c *Clock) GetTimeLeft() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.timeLeft - c.now().Sub(c.lastStarted)
	}
	return c.timeLeft
}

// Expired reports whether the flag has fallen.
func (c *Clock) Expired() bool {
	return c.GetTimeLeft() <= 0
}

// Deciseconds is the remaining time in tenths of a second, never negative,
// the unit clients display.
func (c *Clock) Deciseconds() int {
	left := c.GetTimeLeft()
	if left < 0 {
		return 0
	}
	return int(left.Milliseconds() / 100)
}
