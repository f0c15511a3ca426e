package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestTimeProviderMonotonic(t *testing.T) {
	provider := NewTimeProvider()

	t1 := provider.Now()
	time.Sleep(10 * time.Millisecond)
	t2 := provider.Now()

	if !t2.After(t1) {
		t.Errorf("Expected t2 to be after t1, but got t1=%v, t2=%v", t1, t2)
	}
	if diff := t2.Sub(t1); diff < 10*time.Millisecond {
		t.Errorf("Expected at least 10ms difference, got %v", diff)
	}
}

func TestMockTimeProvider(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)

	if now := mock.Now(); !now.Equal(start) {
		t.Errorf("Expected initial time %v, got %v", start, now)
	}

	mock.Advance(1 * time.Hour)
	if now := mock.Now(); !now.Equal(start.Add(time.Hour)) {
		t.Errorf("Expected %v after Advance, got %v", start.Add(time.Hour), now)
	}

	mock.SetTime(start)
	mock.SetStep(16 * time.Millisecond)
	first := mock.Now()
	second := mock.Now()
	if !first.Equal(start) || second.Sub(first) != 16*time.Millisecond {
		t.Errorf("Expected auto step of 16ms from %v, got %v then %v", start, first, second)
	}
}

func TestFrameTimer(t *testing.T) {
	mock := NewMockTimeProvider(time.Unix(1000, 0))
	timer := NewFrameTimer(mock)

	if dt := timer.Delta(); dt != 0 {
		t.Errorf("Expected first delta 0, got %v", dt)
	}

	mock.Advance(250 * time.Millisecond)
	if dt := timer.Delta(); dt != 0.25 {
		t.Errorf("Expected 0.25, got %v", dt)
	}

	// Clock stepping backwards yields a negative delta
	mock.SetTime(time.Unix(999, 0))
	if dt := timer.Delta(); dt >= 0 {
		t.Errorf("Expected negative delta, got %v", dt)
	}
}

func TestLoopRun(t *testing.T) {
	sim := newTestSim(t)
	mock := NewMockTimeProvider(time.Unix(0, 0))
	mock.SetStep(16 * time.Millisecond)

	var before, after int
	loop := &Loop{
		Sim:        sim,
		Interval:   time.Millisecond,
		Clock:      mock,
		BeforeTick: func(*SimulationContext) { before++ },
		AfterTick:  func(*SimulationContext) { after++ },
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := loop.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error, got %v", err)
	}
	if after == 0 || before != after {
		t.Fatalf("Expected matching hook calls, got before=%d after=%d", before, after)
	}
	if sim.FrameNumber() != uint64(after) {
		t.Errorf("Expected %d frames, got %d", after, sim.FrameNumber())
	}
	if !scalar.EqualWithinAbs(sim.Now(), float64(after)*0.016, 1e-9) {
		t.Errorf("Expected frame clock %v, got %v", float64(after)*0.016, sim.Now())
	}
}
