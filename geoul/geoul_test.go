package geoul

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tongosu/ddonirang/engine"
	"github.com/tongosu/ddonirang/fixed64"
	"github.com/tongosu/ddonirang/iyagi"
	"github.com/tongosu/ddonirang/nuri"
	"github.com/tongosu/ddonirang/sam"
	"github.com/tongosu/ddonirang/signal"
)

func TestInMemoryGeoulReplayNextYieldsFramesInOrder(t *testing.T) {
	g := NewInMemoryGeoul()
	g.Record(engine.TickFrame{Snapshot: sam.InputSnapshot{TickID: 0}})
	g.Record(engine.TickFrame{Snapshot: sam.InputSnapshot{TickID: 1}})

	assert.EqualValues(t, 2, g.FrameCount())

	f0, ok := g.ReplayNext()
	assert.True(t, ok)
	assert.EqualValues(t, 0, f0.Snapshot.TickID)

	f1, ok := g.ReplayNext()
	assert.True(t, ok)
	assert.EqualValues(t, 1, f1.Snapshot.TickID)

	_, ok = g.ReplayNext()
	assert.False(t, ok)
}

type incrementIyagi struct{}

func (incrementIyagi) RunStartup(world iyagi.WorldReader) iyagi.Patch {
	return iyagi.Patch{Origin: iyagi.SystemOrigin("test")}
}

func (incrementIyagi) RunUpdate(world iyagi.WorldReader, input *sam.InputSnapshot) iyagi.Patch {
	current, _ := world.GetResourceFixed64("counter")
	return iyagi.Patch{
		Origin: iyagi.SystemOrigin("test"),
		Ops:    []iyagi.PatchOp{iyagi.SetResourceFixed64("counter", current.Add(fixed64.One))},
	}
}

func TestBundleRoundTripReplaysWithoutMismatch(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewBundleWriter(dir)
	assert.NoError(t, err)

	manager := nuri.NewManager()
	iy := incrementIyagi{}
	sink := &signal.VecSink{}

	for tick := signal.TickID(0); tick < 5; tick++ {
		snapshot := sam.InputSnapshot{TickID: tick}
		patch := iy.RunUpdate(manager.World(), &snapshot)
		manager.World().ApplyPatch(patch, tick, sink)
		writer.Record(engine.TickFrame{
			Snapshot:  snapshot,
			Patch:     patch,
			StateHash: manager.World().StateHash(),
		})
	}

	reader, err := OpenBundleReader(dir)
	assert.NoError(t, err)
	assert.EqualValues(t, 5, reader.FrameCount())

	mismatch, err := VerifyReplay(reader, iy, 4, 0)
	assert.NoError(t, err)
	assert.Nil(t, mismatch)
}

func TestVerifyReplayReportsEarliestDivergence(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewBundleWriter(dir)
	assert.NoError(t, err)

	manager := nuri.NewManager()
	sink := &signal.VecSink{}

	for tick := signal.TickID(0); tick < 3; tick++ {
		snapshot := sam.InputSnapshot{TickID: tick}
		patch := iyagi.Patch{
			Origin: iyagi.SystemOrigin("test"),
			Ops:    []iyagi.PatchOp{iyagi.SetResourceFixed64("counter", fixed64.FromI64(int64(tick)))},
		}
		manager.World().ApplyPatch(patch, tick, sink)
		stateHash := manager.World().StateHash()
		if tick == 1 {
			stateHash[0] ^= 0xFF // corrupt the recorded hash for this frame
		}
		writer.Record(engine.TickFrame{Snapshot: snapshot, Patch: patch, StateHash: stateHash})
	}

	reader, err := OpenBundleReader(dir)
	assert.NoError(t, err)

	mismatch, err := VerifyReplay(reader, incrementFromTickIyagi{}, 2, 0)
	assert.NoError(t, err)
	assert.NotNil(t, mismatch)
	assert.EqualValues(t, 1, mismatch.Madi)
}

type incrementFromTickIyagi struct{}

func (incrementFromTickIyagi) RunStartup(world iyagi.WorldReader) iyagi.Patch {
	return iyagi.Patch{Origin: iyagi.SystemOrigin("test")}
}

func (incrementFromTickIyagi) RunUpdate(world iyagi.WorldReader, input *sam.InputSnapshot) iyagi.Patch {
	return iyagi.Patch{
		Origin: iyagi.SystemOrigin("test"),
		Ops:    []iyagi.PatchOp{iyagi.SetResourceFixed64("counter", fixed64.FromI64(int64(input.TickID)))},
	}
}
