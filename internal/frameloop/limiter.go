package frameloop

import "time"

// Limiter paces frames to a fixed rate when vsync is off.
type Limiter struct {
	fps  int
	next time.Time
}

// NewLimiter creates a limiter; fps <= 0 disables pacing.
func NewLimiter(fps int) *Limiter {
	return &Limiter{fps: fps}
}

// Wait blocks until the next frame is due. It sleeps for most of the interval
// and spins for the last 200µs.
func (f *Limiter) Wait() {
	if f.fps <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(f.fps)

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// resync after a hitch instead of bursting to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}

// Paced wraps a source so each signal is also held back by a limiter.
type Paced struct {
	Source  RefreshSource
	Limiter *Limiter
}

func (p Paced) Next() bool {
	p.Limiter.Wait()
	return p.Source.Next()
}
