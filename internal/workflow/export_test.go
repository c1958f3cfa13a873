package workflow

import "time"

// SetClock replaces the time source used for entry timestamps.
func (p *Publisher) SetClock(now func() time.Time) {
	p.now = now
}
