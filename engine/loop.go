package engine

import (
	"context"
	"time"
)

// Loop drives a SimulationContext from a ticker on the calling goroutine
type Loop struct {
	Sim      *SimulationContext
	Interval time.Duration
	Clock    Clock // Nil uses the system clock

	// BeforeTick runs on the loop goroutine, hosts drain queued input here
	BeforeTick func(*SimulationContext)
	// AfterTick runs after each frame, hosts render or publish here
	AfterTick func(*SimulationContext)
}

// Run ticks until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	timer := NewFrameTimer(l.Clock)
	timer.Delta()

	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.BeforeTick != nil {
				l.BeforeTick(l.Sim)
			}
			l.Sim.Tick(timer.Delta())
			if l.AfterTick != nil {
				l.AfterTick(l.Sim)
			}
		}
	}
}
