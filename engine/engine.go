// Package engine drives the five-stage tick pipeline: Sam freezes input,
// Iyagi turns it into a Patch, Nuri applies the Patch and the resulting
// world is hashed, Geoul records the frame, and Bogae observes it
// (spec.md §2, §4.5). TickOnce is the entire per-tick contract; nothing
// outside it may read or write world state.
package engine

import (
	"github.com/tongosu/ddonirang/iyagi"
	"github.com/tongosu/ddonirang/sam"
	"github.com/tongosu/ddonirang/signal"
)

// World is the subset of nuri.World that the engine needs: a read-only
// view for Iyagi plus ApplyPatch and StateHash.
type World interface {
	iyagi.WorldReader
	ApplyPatch(patch iyagi.Patch, tickID signal.TickID, sink signal.Sink)
	StateHash() [32]byte
}

// Nuri owns World for the lifetime of the engine.
type Nuri interface {
	World() World
}

// Geoul records TickFrames in tick order.
type Geoul interface {
	Record(frame TickFrame)
}

// Bogae observes world state after each tick. It must not mutate it.
type Bogae interface {
	Render(world iyagi.WorldReader, tickID signal.TickID)
}

// TickFrame is the immutable record of one tick (spec.md §3).
type TickFrame struct {
	Snapshot  sam.InputSnapshot
	Patch     iyagi.Patch
	StateHash [32]byte
}

// Loop wires one Sam, one Iyagi, one Nuri, one Geoul, and one Bogae into
// the tick pipeline. Go interfaces stand in for the generic trait bounds
// of the reference implementation: the engine is compiled once per
// concrete combination just as the generic form would be instantiated.
type Loop struct {
	Sam   sam.Sam
	Iyagi iyagi.Iyagi
	Nuri  Nuri
	Geoul Geoul
	Bogae Bogae
}

// New wires the five stages into a Loop.
func New(s sam.Sam, i iyagi.Iyagi, n Nuri, g Geoul, b Bogae) *Loop {
	return &Loop{Sam: s, Iyagi: i, Nuri: n, Geoul: g, Bogae: b}
}

// TickOnce performs, in order: freeze input (Sam), produce a patch
// (Iyagi, against a read-only world), apply the patch (Nuri, emitting
// fault/diag signals onto sink), hash the resulting world, record the
// frame (Geoul), and render (Bogae). Returns the frame it recorded.
func (l *Loop) TickOnce(tickID signal.TickID, sink signal.Sink) TickFrame {
	snapshot := l.Sam.BeginTick(tickID)

	world := l.Nuri.World()
	patch := l.Iyagi.RunUpdate(world, &snapshot)

	world.ApplyPatch(patch, snapshot.TickID, sink)

	stateHash := world.StateHash()

	frame := TickFrame{
		Snapshot:  snapshot,
		Patch:     patch,
		StateHash: stateHash,
	}
	l.Geoul.Record(frame)

	l.Bogae.Render(world, snapshot.TickID)

	return frame
}
