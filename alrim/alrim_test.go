package alrim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tongosu/ddonirang/signal"
)

// echoHandler re-emits every signal it sees, onto the next pass's queue.
type echoHandler struct{}

func (echoHandler) OnSignal(s signal.Signal, out signal.Sink) {
	out.Emit(s)
}

func TestCascadeCarriesOverAtMaxPasses(t *testing.T) {
	loop := New()
	logger := &VecLogger{}

	loop.RunTick(0, []signal.Signal{signal.Alrim("연쇄")}, echoHandler{}, logger)

	var processed, carried int
	for _, e := range logger.Entries {
		if e.Carried {
			carried++
		} else {
			processed++
		}
	}

	assert.Equal(t, MaxPasses, processed)
	assert.Equal(t, 1, carried)
	assert.Equal(t, 1, loop.CarryoverLen())
}

func TestCarryoverFeedsIntoNextTick(t *testing.T) {
	loop := New()
	logger := &VecLogger{}

	loop.RunTick(0, []signal.Signal{signal.Alrim("연쇄")}, echoHandler{}, logger)
	assert.Equal(t, 1, loop.CarryoverLen())

	logger2 := &VecLogger{}
	loop.RunTick(1, nil, echoHandler{}, logger2)

	var processedTick2 int
	for _, e := range logger2.Entries {
		if !e.Carried {
			processedTick2++
		}
	}
	assert.Equal(t, MaxPasses, processedTick2)
}

func TestTakeCarryoverDrainsQueue(t *testing.T) {
	loop := New()
	loop.RunTick(0, []signal.Signal{signal.Alrim("연쇄")}, echoHandler{}, &VecLogger{})
	assert.Equal(t, 1, loop.CarryoverLen())

	drained := loop.TakeCarryover()
	assert.Len(t, drained, 1)
	assert.Equal(t, 0, loop.CarryoverLen())
}

type nonEchoHandler struct{}

func (nonEchoHandler) OnSignal(s signal.Signal, out signal.Sink) {}

func TestCascadeTerminatesWhenQueueEmpties(t *testing.T) {
	loop := New()
	logger := &VecLogger{}

	loop.RunTick(0, []signal.Signal{signal.Alrim("a"), signal.Alrim("b")}, nonEchoHandler{}, logger)

	assert.Len(t, logger.Entries, 2)
	assert.Equal(t, 0, loop.CarryoverLen())
}
