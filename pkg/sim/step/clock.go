package step

import (
	"math"
	"math/rand"
	"time"

	"github.com/physlab/physview.go/pkg/sim/engine"
)

// BacklogBound is the wall-clock backlog beyond which simulation time
// snaps to wall time instead of stepping to catch up. Prevents a
// runaway stepping burst after a stall.
const BacklogBound = 35 * time.Millisecond

// Clock maps wall time to simulation time by fixed-step accumulation.
// Each frame it performs zero or more engine steps until simulation
// time reaches wall time, keeping physics determinism independent of
// the frame rate.
type Clock struct {
	// NoiseStd is the stationary standard deviation of the injected
	// control noise. Zero disables the noise pass.
	NoiseStd float64
	// NoiseRate is the correlation time of the noise in seconds.
	NoiseRate float64

	paused  bool
	base    time.Time
	baseSet bool
	rng     *rand.Rand
}

// NewClock creates a clock with noise disabled.
func NewClock() *Clock {
	return &Clock{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Paused reports whether the clock is paused.
func (c *Clock) Paused() bool { return c.paused }

// SetPaused pauses or resumes the clock. Resuming re-bases wall time so
// the pause duration is not stepped through.
func (c *Clock) SetPaused(paused bool) {
	c.paused = paused
	c.baseSet = false
}

// Rebase forgets the wall-time origin; the next frame re-anchors
// simulation time to wall time. Called on scene switch.
func (c *Clock) Rebase() {
	c.baseSet = false
}

// Advance runs one frame of simulation at wall time now. While running
// it steps the engine zero or more times, injecting control noise and
// drag forces before each step. While paused it applies direct pose
// edits and recomputes derived quantities without stepping.
func (c *Clock) Advance(now time.Time, st *State, eng engine.Engine, perturb *Perturbation) {
	if st == nil {
		return
	}
	if !c.baseSet {
		c.base = now.Add(-durationOf(st.Data.Time))
		c.baseSet = true
	}

	if c.paused {
		// pose edits only; keep wall time anchored to simulation time
		// so resuming does not replay the pause
		c.base = now.Add(-durationOf(st.Data.Time))
		if perturb.applyPaused(st) {
			eng.Forward(st.Model, st.Data)
		}
		return
	}

	wall := now.Sub(c.base).Seconds()
	if wall-st.Data.Time > BacklogBound.Seconds() {
		// drop the backlog instead of bursting through it
		st.Data.Time = wall
		return
	}
	dt := st.Model.Timestep()
	for st.Data.Time < wall {
		c.applyNoise(st, dt)
		perturb.applyRunning(st, eng)
		eng.Step(st.Model, st.Data)
	}
}

// applyNoise updates every control value with an exponentially
// correlated random walk: new = rate*old + scale*N(0,1).
func (c *Clock) applyNoise(st *State, dt float64) {
	if c.NoiseStd <= 0 {
		return
	}
	rate := math.Exp(-dt / math.Max(1e-10, c.NoiseRate))
	scale := c.NoiseStd * math.Sqrt(1-rate*rate)
	ctrl := st.Data.Ctrl()
	for i := range ctrl {
		ctrl[i] = rate*ctrl[i] + scale*c.rng.NormFloat64()
	}
}

func durationOf(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
