package sam

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tongosu/ddonirang/fixed64"
)

func TestAIInjectionsAreSortedAndDelayedByTick(t *testing.T) {
	s := NewDetSam(fixed64.FromI64(1))
	intent := SeulgiIntent{Kind: IntentSay, Text: "hi"}

	s.PushAsyncAI(2, 2, 0, 0, intent)
	s.PushAsyncAI(1, 9, 0, 0, intent)
	s.PushAsyncAI(2, 1, 0, 0, intent)

	snapshot := s.BeginTick(1)
	assert.Len(t, snapshot.AiInjections, 3)
	assert.EqualValues(t, 1, snapshot.AiInjections[0].AgentID)
	assert.EqualValues(t, 2, snapshot.AiInjections[1].AgentID)
	assert.EqualValues(t, 1, snapshot.AiInjections[1].RecvSeq)
	assert.EqualValues(t, 2, snapshot.AiInjections[2].RecvSeq)

	s.PushAsyncAI(9, 0, 0, 0, intent)
	snapshot2 := s.BeginTick(2)
	assert.Len(t, snapshot2.AiInjections, 1)
	assert.EqualValues(t, 9, snapshot2.AiInjections[0].AgentID)
}

func TestNetEventsAreSortedBySenderAndSeq(t *testing.T) {
	s := NewDetSam(fixed64.FromI64(1))
	s.PushNetEvent("peer-b", 2, "peer-b#2", `{"kind":"k"}`)
	s.PushNetEvent("peer-a", 2, "peer-a#2", `{"kind":"k"}`)
	s.PushNetEvent("peer-a", 1, "peer-a#1", `{"kind":"k"}`)

	snapshot := s.BeginTick(0)
	assert.Len(t, snapshot.NetEvents, 3)
	assert.Equal(t, "peer-a", snapshot.NetEvents[0].Sender)
	assert.EqualValues(t, 1, snapshot.NetEvents[0].Seq)
	assert.Equal(t, "peer-a", snapshot.NetEvents[1].Sender)
	assert.EqualValues(t, 2, snapshot.NetEvents[1].Seq)
	assert.Equal(t, "peer-b", snapshot.NetEvents[2].Sender)
}

func TestKeyBitFromNameSupportsWasdArrowsAndIJKL(t *testing.T) {
	bit, ok := KeyBitFromName("W")
	assert.True(t, ok)
	assert.Equal(t, KeyW, bit)

	bit, ok = KeyBitFromName("arrowdown")
	assert.True(t, ok)
	assert.Equal(t, KeyS, bit)

	bit, ok = KeyBitFromName("left")
	assert.True(t, ok)
	assert.Equal(t, KeyA, bit)

	_, ok = KeyBitFromName("unknown")
	assert.False(t, ok)
}

func TestIsKeyJustPressedChecksEdge(t *testing.T) {
	prev := KeyW
	now := KeyW | KeyD
	assert.False(t, IsKeyJustPressed(prev, now, "w"))
	assert.True(t, IsKeyJustPressed(prev, now, "d"))
}

func TestBeginTickDrainsQueuesForNextTick(t *testing.T) {
	s := NewDetSam(fixed64.FromI64(1))
	s.PushNetEvent("peer-a", 1, "k", "{}")
	first := s.BeginTick(0)
	assert.Len(t, first.NetEvents, 1)

	second := s.BeginTick(1)
	assert.Empty(t, second.NetEvents)
}
