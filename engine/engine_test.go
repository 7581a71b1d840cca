package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tongosu/ddonirang/fixed64"
	"github.com/tongosu/ddonirang/iyagi"
	"github.com/tongosu/ddonirang/nuri"
	"github.com/tongosu/ddonirang/sam"
	"github.com/tongosu/ddonirang/signal"
)

type demoIyagi struct{}

func (demoIyagi) RunStartup(world iyagi.WorldReader) iyagi.Patch {
	return iyagi.Patch{Origin: iyagi.SystemOrigin("example")}
}

func (demoIyagi) RunUpdate(world iyagi.WorldReader, input *sam.InputSnapshot) iyagi.Patch {
	return iyagi.Patch{
		Ops:    []iyagi.PatchOp{iyagi.SetResourceFixed64("x", fixed64.FromI64(5))},
		Origin: iyagi.SystemOrigin("example"),
	}
}

type recordingGeoul struct {
	frames []TickFrame
}

func (g *recordingGeoul) Record(frame TickFrame) {
	g.frames = append(g.frames, frame)
}

type noopBogae struct {
	renders int
}

func (b *noopBogae) Render(world iyagi.WorldReader, tickID signal.TickID) {
	b.renders++
}

func TestTickOnceRunsFiveStagesInOrder(t *testing.T) {
	s := sam.NewDetSam(fixed64.FromI64(1))
	manager := nuri.NewManager()
	geoul := &recordingGeoul{}
	bogae := &noopBogae{}

	loop := New(s, demoIyagi{}, manager, geoul, bogae)
	sink := &signal.VecSink{}

	frame := loop.TickOnce(0, sink)

	assert.Equal(t, signal.TickID(0), frame.Snapshot.TickID)
	assert.Len(t, geoul.frames, 1)
	assert.Equal(t, 1, bogae.renders)
	assert.Empty(t, sink.Signals)

	x, ok := manager.World().GetResourceFixed64("x")
	assert.True(t, ok)
	assert.True(t, x.Equal(fixed64.FromI64(5)))
	assert.Equal(t, manager.World().StateHash(), frame.StateHash)
}
