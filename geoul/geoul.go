// Package geoul is the frame recorder and replay verifier: an
// append-only log of TickFrames plus a sequential read cursor, and a
// verifier that re-runs recorded input against a fresh world and
// reports the earliest tick at which the state hash diverges
// (spec.md §4.6, §6).
package geoul

import (
	"fmt"

	"github.com/tongosu/ddonirang/engine"
)

// ErrFrameNotFound is returned by ReadFrame for an out-of-range index.
type ErrFrameNotFound struct {
	Index uint64
}

func (e *ErrFrameNotFound) Error() string {
	return fmt.Sprintf("geoul: no frame at index %d", e.Index)
}

// Geoul is the recorder capability the engine drives.
type Geoul interface {
	Record(frame engine.TickFrame)
}

// Log extends Geoul with the read/replay surface used by tooling.
type Log interface {
	Geoul
	FrameCount() uint64
	ReadFrame(index uint64) (engine.TickFrame, error)
	ReplayNext() (engine.TickFrame, bool)
}

// InMemoryGeoul is the reference Log: frames live only in process
// memory, in append order.
type InMemoryGeoul struct {
	frames []engine.TickFrame
	cursor uint64
}

// NewInMemoryGeoul returns an empty in-memory frame log.
func NewInMemoryGeoul() *InMemoryGeoul {
	return &InMemoryGeoul{}
}

func (g *InMemoryGeoul) Record(frame engine.TickFrame) {
	g.frames = append(g.frames, frame)
}

func (g *InMemoryGeoul) FrameCount() uint64 {
	return uint64(len(g.frames))
}

func (g *InMemoryGeoul) ReadFrame(index uint64) (engine.TickFrame, error) {
	if index >= uint64(len(g.frames)) {
		return engine.TickFrame{}, &ErrFrameNotFound{Index: index}
	}
	return g.frames[index], nil
}

// ReplayNext returns the next frame in the sequential cursor and
// advances it, or (zero, false) once every recorded frame has been
// returned.
func (g *InMemoryGeoul) ReplayNext() (engine.TickFrame, bool) {
	if g.cursor >= uint64(len(g.frames)) {
		return engine.TickFrame{}, false
	}
	frame := g.frames[g.cursor]
	g.cursor++
	return frame, true
}
