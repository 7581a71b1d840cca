// Package warp wraps the realm scheduler with an optional measurement
// shim: a benchmark harness whose wall-clock timing must never affect
// the hashes realms produce (spec.md §4.7).
package warp

import (
	"fmt"
	"time"

	"github.com/tongosu/ddonirang/realms"
)

// Backend selects where stepping is estimated/measured to run.
type Backend int

const (
	BackendOff Backend = iota
	BackendCPU
	BackendGPU
)

// Policy trades estimate accuracy for speed.
type Policy int

const (
	PolicyStrict Policy = iota
	PolicyFast
)

// StepBatchSoA is the struct-of-arrays form of []realms.StepInput, used
// where a flat columnar layout is more convenient for callers assembling
// a batch (e.g. a CLI reading two parallel columns from a file).
type StepBatchSoA struct {
	RealmIDs []uint64
	Deltas   []int64
}

// ToInputs reassembles the columnar form into realms.StepInput values.
func (s StepBatchSoA) ToInputs() ([]realms.StepInput, error) {
	if len(s.RealmIDs) != len(s.Deltas) {
		return nil, fmt.Errorf("warp: realm_ids and deltas length mismatch")
	}
	out := make([]realms.StepInput, len(s.RealmIDs))
	for i := range s.RealmIDs {
		out[i] = realms.StepInput{RealmID: s.RealmIDs[i], Delta: s.Deltas[i]}
	}
	return out, nil
}

// BenchInput parameterizes RunWarpBench.
type BenchInput struct {
	MasterSeed uint64
	RealmCount int
	Steps      uint64
	StepBatch  StepBatchSoA
}

// BenchOutput is RunWarpBench's estimated/measured timing result. It
// never carries realm state: the benchmark's sole purpose is timing,
// and its measurement must never leak into anything hashed.
type BenchOutput struct {
	CPUMillis  uint64
	GPUMillis  uint64
	RealmCount int
	StepCount  uint64
}

func estimateMillis(realmCount int, steps uint64, divisor uint64) uint64 {
	base := uint64(realmCount) * maxU64(steps, 1)
	div := maxU64(divisor, 1)
	value := base / div
	return maxU64(value, 1)
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func runSteps(realmCount int, masterSeed uint64, steps uint64, batch StepBatchSoA, thread realms.ThreadMode) error {
	manager, err := realms.NewMultiRealmManager(realmCount, masterSeed, thread)
	if err != nil {
		return err
	}
	inputs, err := batch.ToInputs()
	if err != nil {
		return err
	}
	for i := uint64(0); i < steps; i++ {
		if err := manager.StepBatch(inputs); err != nil {
			return err
		}
	}
	return nil
}

// RunWarpBench steps realmCount realms steps times under Seq thread
// mode (and again when backend/policy select GPU+Fast, under
// Parallel(threads) if threads > 1 and under Seq otherwise), optionally
// timing each run. measure only ever affects the
// returned millisecond counts, never the realms' produced state
// (measurement-must-not-affect-hashes, spec.md §4.7).
func RunWarpBench(input BenchInput, backend Backend, policy Policy, threads int, measure bool) (BenchOutput, error) {
	if input.RealmCount <= 0 {
		return BenchOutput{}, fmt.Errorf("warp: realm_count must be > 0")
	}

	cpuMillis := estimateMillis(input.RealmCount, input.Steps, 1)
	useGPU := backend == BackendGPU && policy == PolicyFast
	gpuMillis := cpuMillis
	if useGPU {
		gpuMillis = estimateMillis(input.RealmCount, input.Steps, 4)
	}

	if measure {
		start := time.Now()
		if err := runSteps(input.RealmCount, input.MasterSeed, input.Steps, input.StepBatch, realms.Seq()); err != nil {
			return BenchOutput{}, err
		}
		cpuMillis = maxU64(uint64(time.Since(start).Milliseconds()), 1)
	} else {
		if err := runSteps(input.RealmCount, input.MasterSeed, input.Steps, input.StepBatch, realms.Seq()); err != nil {
			return BenchOutput{}, err
		}
	}

	if useGPU {
		thread := realms.Seq()
		if threads > 1 {
			thread = realms.Parallel(threads)
		}
		if measure {
			start := time.Now()
			if err := runSteps(input.RealmCount, input.MasterSeed, input.Steps, input.StepBatch, thread); err != nil {
				return BenchOutput{}, err
			}
			gpuMillis = maxU64(uint64(time.Since(start).Milliseconds()), 1)
		} else {
			if err := runSteps(input.RealmCount, input.MasterSeed, input.Steps, input.StepBatch, thread); err != nil {
				return BenchOutput{}, err
			}
		}
	} else if measure {
		gpuMillis = cpuMillis
	}

	return BenchOutput{
		CPUMillis:  cpuMillis,
		GPUMillis:  gpuMillis,
		RealmCount: input.RealmCount,
		StepCount:  input.Steps,
	}, nil
}
