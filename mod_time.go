package starter

import (
	"time"
)

// Time is the frame clock. The loop ticks it once per frame before Update.
type Time struct {
	Now   time.Time
	Dt    time.Duration
	Total time.Duration
	Frame uint64
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{})
}

// Tick advances to now. The first tick and a clock that went backwards
// both yield a zero Dt.
func (t *Time) Tick(now time.Time) {
	if !t.Now.IsZero() && now.After(t.Now) {
		t.Dt = now.Sub(t.Now)
	} else {
		t.Dt = 0
	}
	t.Now = now
	t.Total += t.Dt
	t.Frame++
}

// Seconds is Dt in seconds.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}
