// Package realms implements the multi-realm scheduler: N independent
// deterministic sub-worlds, each seeded from a master seed via a fixed
// mixing function, stepped either sequentially or in parallel shards
// without changing the observable result (spec.md §4.7, §5).
package realms

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"lukechampine.com/blake3"
)

// recentStepCacheSize bounds how many of a realm's most recent deltas
// the manager keeps around for diagnostics. It has no bearing on the
// realm's state hash or stepping order.
const recentStepCacheSize = 32

const (
	splitmix64Gamma = 0x9e3779b97f4a7c15
	splitmix64Mix1  = 0xbf58476d1ce4e5b9
	splitmix64Mix2  = 0x94d049bb133111eb
)

// splitmix64 is the reference splitmix64 step function.
func splitmix64(seed uint64) uint64 {
	z := seed + splitmix64Gamma
	z = (z ^ (z >> 30)) * splitmix64Mix1
	z = (z ^ (z >> 27)) * splitmix64Mix2
	z = z ^ (z >> 31)
	return z
}

// mix64 derives realm id's seed from the manager's master seed: a
// splitmix64 step applied to master_seed XOR realm_id.
func mix64(masterSeed uint64, realmID uint64) uint64 {
	return splitmix64(masterSeed ^ realmID)
}

// Realm is one deterministic sub-world: its accumulator is the
// minimal fold state needed to exercise a reproducible, hashable
// per-realm step function (spec.md §3's {id, seed, state_hash,
// step_counter} plus the accumulator the hash is derived from).
type Realm struct {
	ID          uint64
	Seed        uint64
	Accumulator int64
	StepCounter uint64
	StateHash   [32]byte
}

func newRealm(id uint64, masterSeed uint64) *Realm {
	r := &Realm{ID: id, Seed: mix64(masterSeed, id)}
	r.rehash()
	return r
}

func (r *Realm) rehash() {
	var buf [32]byte
	putU64(buf[0:8], r.ID)
	putU64(buf[8:16], r.Seed)
	putU64(buf[16:24], uint64(r.Accumulator))
	putU64(buf[24:32], r.StepCounter)
	r.StateHash = blake3.Sum256(buf[:])
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// step folds delta into the realm's accumulator and recomputes its
// hash. Delta-folding uses the realm's own seed so that two realms
// given the same delta still diverge deterministically.
func (r *Realm) step(delta int64) {
	r.Accumulator += delta + int64(r.Seed%997)
	r.StepCounter++
	r.rehash()
}

// ThreadModeKind discriminates ThreadMode.
type ThreadModeKind int

const (
	ThreadModeSeq ThreadModeKind = iota
	ThreadModeParallel
)

// ThreadMode is Seq or Parallel(n).
type ThreadMode struct {
	Kind    ThreadModeKind
	Workers int
}

// Seq is the sequential thread mode.
func Seq() ThreadMode { return ThreadMode{Kind: ThreadModeSeq} }

// Parallel is the sharded-parallel thread mode with n worker goroutines.
func Parallel(n int) ThreadMode { return ThreadMode{Kind: ThreadModeParallel, Workers: n} }

// StepInput addresses one realm's step: {realm_id, delta}.
type StepInput struct {
	RealmID uint64
	Delta   int64
}

// MultiRealmManager owns realm_count realms seeded from masterSeed and
// steps them according to ThreadMode.
type MultiRealmManager struct {
	realms      map[uint64]*Realm
	order       []uint64
	thread      ThreadMode
	masterSeed  uint64
	recentSteps *lru.Cache
}

// NewMultiRealmManager creates realmCount realms [0, realmCount).
func NewMultiRealmManager(realmCount int, masterSeed uint64, thread ThreadMode) (*MultiRealmManager, error) {
	if realmCount <= 0 {
		return nil, fmt.Errorf("realms: realm_count must be > 0")
	}
	cache, err := lru.New(recentStepCacheSize)
	if err != nil {
		return nil, fmt.Errorf("realms: building recent-step cache: %w", err)
	}
	m := &MultiRealmManager{
		realms:      make(map[uint64]*Realm, realmCount),
		order:       make([]uint64, 0, realmCount),
		thread:      thread,
		masterSeed:  masterSeed,
		recentSteps: cache,
	}
	for id := uint64(0); id < uint64(realmCount); id++ {
		m.realms[id] = newRealm(id, masterSeed)
		m.order = append(m.order, id)
	}
	return m, nil
}

// StepBatch advances each addressed realm by folding its delta into
// its state. Under ThreadModeSeq, inputs are processed in the exact
// given order. Under ThreadModeParallel, inputs are partitioned by
// realm id into disjoint shards (each realm is its own shard); shards
// run concurrently via errgroup, each preserving its own input order.
// Because a realm's resulting hash depends only on its own input
// substream, the per-realm result is identical to the sequential
// result regardless of shard scheduling (spec.md §4.7).
func (m *MultiRealmManager) StepBatch(inputs []StepInput) error {
	for _, in := range inputs {
		if _, ok := m.realms[in.RealmID]; !ok {
			return fmt.Errorf("realms: unknown realm id %d", in.RealmID)
		}
	}

	if m.thread.Kind == ThreadModeSeq {
		for _, in := range inputs {
			m.realms[in.RealmID].step(in.Delta)
			m.recordRecentStep(in)
		}
		return nil
	}

	shards := make(map[uint64][]int64)
	for _, in := range inputs {
		shards[in.RealmID] = append(shards[in.RealmID], in.Delta)
	}
	shardOrder := make([]uint64, 0, len(shards))
	for realmID := range shards {
		shardOrder = append(shardOrder, realmID)
	}
	sort.Slice(shardOrder, func(i, j int) bool { return shardOrder[i] < shardOrder[j] })

	var g errgroup.Group
	if m.thread.Workers > 0 {
		g.SetLimit(m.thread.Workers)
	}
	for _, realmID := range shardOrder {
		realmID := realmID
		deltas := shards[realmID]
		realm := m.realms[realmID]
		g.Go(func() error {
			for _, delta := range deltas {
				realm.step(delta)
				m.recordRecentStep(StepInput{RealmID: realmID, Delta: delta})
			}
			return nil
		})
	}
	return g.Wait()
}

// StateHashes returns the ordered vector of realm hashes (ascending
// realm id, matching construction order).
func (m *MultiRealmManager) StateHashes() [][32]byte {
	out := make([][32]byte, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.realms[id].StateHash)
	}
	return out
}

// Realm returns the realm with the given id, if any.
func (m *MultiRealmManager) Realm(id uint64) (*Realm, bool) {
	r, ok := m.realms[id]
	return r, ok
}

// recordRecentStep appends in to realm in's bounded recent-step
// history, evicting the oldest entry once the history is full. This
// cache is diagnostic only: it is never read by step() or rehash() and
// has no effect on any StateHash.
func (m *MultiRealmManager) recordRecentStep(in StepInput) {
	var history []StepInput
	if cached, ok := m.recentSteps.Get(in.RealmID); ok {
		history = cached.([]StepInput)
	}
	history = append(history, in)
	if len(history) > recentStepCacheSize {
		history = history[len(history)-recentStepCacheSize:]
	}
	m.recentSteps.Add(in.RealmID, history)
}

// RecentSteps returns the bounded history of the most recently applied
// deltas for realm id, oldest first, for diagnostics/tooling use.
func (m *MultiRealmManager) RecentSteps(id uint64) []StepInput {
	cached, ok := m.recentSteps.Get(id)
	if !ok {
		return nil
	}
	return cached.([]StepInput)
}
