package feedtui

import (
	"sync"
	"time"
)

// UpdateDebouncer limits how often live camera frames are re-rendered.
type UpdateDebouncer struct {
	mu          sync.Mutex
	lastUpdate  time.Time
	minInterval time.Duration
}

func NewUpdateDebouncer(minInterval time.Duration) *UpdateDebouncer {
	return &UpdateDebouncer{
		minInterval: minInterval,
	}
}

// ShouldUpdate returns true if enough time has passed since the last accepted update
func (d *UpdateDebouncer) ShouldUpdate(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if now.Sub(d.lastUpdate) < d.minInterval {
		return false
	}

	d.lastUpdate = now
	return true
}

// Reset lets the next update through immediately.
func (d *UpdateDebouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastUpdate = time.Time{}
}
