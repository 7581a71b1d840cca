// Package nurigym is the reference RL-style environment: a
// deterministic discrete-time pendulum integrated entirely in Fixed64,
// seeded reproducibly from a u64 via splitmix64 (spec.md §4.8).
package nurigym

import (
	"fmt"

	"github.com/tongosu/ddonirang/fixed64"
)

// PendulumConfig parameterizes the integration step.
type PendulumConfig struct {
	Dt         fixed64.Fixed64
	Torque     fixed64.Fixed64
	Gravity    fixed64.Fixed64
	Damping    fixed64.Fixed64
	AngleLimit fixed64.Fixed64
	MaxSteps   uint64
}

// DefaultConfigV1 matches the reference episode's constants exactly:
// dt=1/50, torque=1, gravity=1, damping=1/10, angle_limit=157/100,
// max_steps=200.
func DefaultConfigV1() PendulumConfig {
	return PendulumConfig{
		Dt:         fixedRatio(1, 50),
		Torque:     fixed64.One,
		Gravity:    fixed64.One,
		Damping:    fixedRatio(1, 10),
		AngleLimit: fixedRatio(157, 100),
		MaxSteps:   200,
	}
}

// PendulumState is the integrator's state: angle and angular velocity.
type PendulumState struct {
	Theta fixed64.Fixed64
	Omega fixed64.Fixed64
}

// SeededState derives an initial state deterministically from seed: a
// splitmix64 step, then two 16-bit centered extractions (bits
// [0:16) and [16:32)) scaled into Fixed64 by a further <<16, matching
// the teacher-grounded arithmetic primitives' widening convention.
func SeededState(seed uint64) PendulumState {
	base := splitmix64(seed)
	return PendulumState{
		Theta: seedToFixed(base, 0),
		Omega: seedToFixed(base, 16),
	}
}

// Observation returns [theta, omega].
func (s PendulumState) Observation() [2]fixed64.Fixed64 {
	return [2]fixed64.Fixed64{s.Theta, s.Omega}
}

// Step is one recorded transition.
type Step struct {
	Observation     [2]fixed64.Fixed64
	Action          int64
	Reward          fixed64.Fixed64
	NextObservation [2]fixed64.Fixed64
	Done            bool
}

// Env is a single pendulum episode in progress.
type Env struct {
	state  PendulumState
	config PendulumConfig
	done   bool
}

// NewEnv seeds a fresh environment.
func NewEnv(seed uint64, config PendulumConfig) *Env {
	return &Env{state: SeededState(seed), config: config}
}

// IsDone reports whether the episode has already terminated.
func (e *Env) IsDone() bool {
	return e.done || isDone(e.state, e.config)
}

// Step advances the pendulum by one action (-1 or +1). Any other
// value is rejected before touching state.
func (e *Env) Step(action int64) (Step, error) {
	if e.IsDone() {
		return Step{}, fmt.Errorf("nurigym: pendulum already done")
	}
	normalized, err := normalizeAction(action)
	if err != nil {
		return Step{}, err
	}

	obs := e.state.Observation()
	applyStep(&e.state, normalized, e.config)
	nextObs := e.state.Observation()
	doneAfter := isDone(e.state, e.config)

	reward := fixed64.One
	if doneAfter {
		reward = fixed64.Zero
	}
	e.done = doneAfter

	return Step{
		Observation:     obs,
		Action:          normalized,
		Reward:          reward,
		NextObservation: nextObs,
		Done:            doneAfter,
	}, nil
}

// RunEpisode runs seed's pendulum through actions in order, stopping on
// termination, input exhaustion, or maxSteps (which overrides
// DefaultConfigV1's MaxSteps when non-nil). The last allowed step
// always has Done forced true and Reward forced to zero, even if the
// pendulum had not yet left its angle limit.
func RunEpisode(seed uint64, actions []int64, maxSteps *uint64) ([]Step, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("nurigym: actions must not be empty")
	}

	config := DefaultConfigV1()
	if maxSteps != nil {
		config.MaxSteps = *maxSteps
	}

	env := NewEnv(seed, config)
	steps := make([]Step, 0, len(actions))

	for idx, rawAction := range actions {
		if uint64(idx) >= config.MaxSteps {
			break
		}
		if env.IsDone() {
			break
		}
		step, err := env.Step(rawAction)
		if err != nil {
			return nil, err
		}
		lastStep := uint64(idx+1) >= config.MaxSteps
		if lastStep && !step.Done {
			step.Done = true
			step.Reward = fixed64.Zero
		}
		steps = append(steps, step)
		if step.Done {
			break
		}
	}

	return steps, nil
}

func normalizeAction(action int64) (int64, error) {
	if action == -1 || action == 1 {
		return action, nil
	}
	return 0, fmt.Errorf("nurigym: action=%d (expected -1 or 1)", action)
}

func applyStep(state *PendulumState, action int64, config PendulumConfig) {
	act := fixed64.FromI64(action)
	torque := act.Mul(config.Torque)
	accel := torque.Sub(state.Theta.Mul(config.Gravity)).Sub(state.Omega.Mul(config.Damping))
	state.Omega = state.Omega.Add(accel.Mul(config.Dt))
	state.Theta = state.Theta.Add(state.Omega.Mul(config.Dt))
}

func isDone(state PendulumState, config PendulumConfig) bool {
	return fixedAbs(state.Theta).RawI64() > config.AngleLimit.RawI64()
}

func fixedAbs(value fixed64.Fixed64) fixed64.Fixed64 {
	if value.RawI64() < 0 {
		return value.Neg()
	}
	return value
}

func seedToFixed(seed uint64, shift uint) fixed64.Fixed64 {
	bits := int64((seed >> shift) & 0xFFFF)
	centered := bits - 0x8000
	raw := centered << 16
	return fixed64.FromRawI64(raw)
}

// fixedRatio computes num/den as a saturating Fixed64: TryDiv of two
// integer Fixed64 values already produces the correctly scaled Q32.32
// quotient.
func fixedRatio(num, den int64) fixed64.Fixed64 {
	if den == 0 {
		return fixed64.Zero
	}
	quotient, err := fixed64.FromI64(num).TryDiv(fixed64.FromI64(den))
	if err != nil {
		return fixed64.Zero
	}
	return quotient
}

func splitmix64(seed uint64) uint64 {
	z := seed + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
