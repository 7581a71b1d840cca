// Package sam implements the input-capture stage: it assembles a frozen
// InputSnapshot for one tick from keyboard/pointer state, queued AI
// injections and net events, sorting the latter two into their
// canonical order before the snapshot is handed to the Iyagi stage
// (spec.md §3/§4.5).
package sam

import (
	"sort"

	"github.com/tongosu/ddonirang/fixed64"
	"github.com/tongosu/ddonirang/signal"
)

// Key bitmask positions: WASD, arrow keys, and the IJKL alias.
const (
	KeyW uint64 = 1 << iota
	KeyA
	KeyS
	KeyD
)

// KeyBitFromName maps a recognized key name to its bitmask position.
// Unknown names report "no mapping" via ok=false rather than silently
// matching nothing.
func KeyBitFromName(name string) (bit uint64, ok bool) {
	switch lower(name) {
	case "w", "i", "up", "arrowup":
		return KeyW, true
	case "a", "j", "left", "arrowleft":
		return KeyA, true
	case "s", "k", "down", "arrowdown":
		return KeyS, true
	case "d", "l", "right", "arrowright":
		return KeyD, true
	default:
		return 0, false
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// IsKeyPressed reports whether name's bit is set in keysPressed.
// Unrecognized names are never considered pressed.
func IsKeyPressed(keysPressed uint64, name string) bool {
	bit, ok := KeyBitFromName(name)
	return ok && keysPressed&bit != 0
}

// IsKeyJustPressed reports an edge: the key is down now but was up in
// prevKeys.
func IsKeyJustPressed(prevKeys, keysPressed uint64, name string) bool {
	bit, ok := KeyBitFromName(name)
	if !ok {
		return false
	}
	return keysPressed&bit != 0 && prevKeys&bit == 0
}

// IntentKind discriminates SeulgiIntent, the tagged payload of a SeulgiPacket.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentMoveTo
	IntentAttack
	IntentSay
)

// SeulgiIntent is an AI-injected action request.
type SeulgiIntent struct {
	Kind     IntentKind
	MoveX    fixed64.Fixed64
	MoveY    fixed64.Fixed64
	TargetID uint64
	Text     string
}

// SeulgiPacket is one AI injection, sorted by
// (AcceptedMadi, AgentID, RecvSeq, TargetMadi).
type SeulgiPacket struct {
	AgentID      uint64
	RecvSeq      uint64
	AcceptedMadi uint64
	TargetMadi   uint64
	Intent       SeulgiIntent
}

func seulgiLess(a, b SeulgiPacket) bool {
	if a.AcceptedMadi != b.AcceptedMadi {
		return a.AcceptedMadi < b.AcceptedMadi
	}
	if a.AgentID != b.AgentID {
		return a.AgentID < b.AgentID
	}
	if a.RecvSeq != b.RecvSeq {
		return a.RecvSeq < b.RecvSeq
	}
	return a.TargetMadi < b.TargetMadi
}

// NetEvent is one inbound network event, sorted by (Sender, Seq).
type NetEvent struct {
	Sender      string
	Seq         uint64
	OrderKey    string
	PayloadJSON string
}

func netEventLess(a, b NetEvent) bool {
	if a.Sender != b.Sender {
		return a.Sender < b.Sender
	}
	return a.Seq < b.Seq
}

// InputSnapshot is the frozen bundle for one tick. It is read-only for
// the rest of the tick: the Iyagi stage may consult it but must never
// mutate it, and nothing about it survives past the tick unless an
// Iyagi copies a field into the world via a Patch op (spec.md §4.4).
type InputSnapshot struct {
	TickID        signal.TickID
	Dt            fixed64.Fixed64
	KeysPressed   uint64
	LastKeyName   string
	PointerX      int32
	PointerY      int32
	AiInjections  []SeulgiPacket
	NetEvents     []NetEvent
	RngSeed       uint64
}

// Sam is the input-capture capability: BeginTick freezes and returns
// the snapshot for tickID, sorting queued AI injections and net events
// into canonical order first.
type Sam interface {
	BeginTick(tickID signal.TickID) InputSnapshot
	PushAsyncAI(agentID, recvSeq, acceptedMadi, targetMadi uint64, intent SeulgiIntent)
	PushNetEvent(sender string, seq uint64, orderKey, payloadJSON string)
}

// DetSam is the deterministic reference Sam: it holds the live
// keyboard/pointer state plus queued AI injections and net events, and
// produces one InputSnapshot per BeginTick call.
type DetSam struct {
	Dt          fixed64.Fixed64
	KeysPressed uint64
	LastKeyName string
	PointerX    int32
	PointerY    int32
	RngSeed     uint64

	aiQueue    []SeulgiPacket
	netQueue   []NetEvent
}

// NewDetSam returns a DetSam with the given per-tick delta time.
func NewDetSam(dt fixed64.Fixed64) *DetSam {
	return &DetSam{Dt: dt}
}

func (s *DetSam) PushAsyncAI(agentID, recvSeq, acceptedMadi, targetMadi uint64, intent SeulgiIntent) {
	s.aiQueue = append(s.aiQueue, SeulgiPacket{
		AgentID:      agentID,
		RecvSeq:      recvSeq,
		AcceptedMadi: acceptedMadi,
		TargetMadi:   targetMadi,
		Intent:       intent,
	})
}

func (s *DetSam) PushNetEvent(sender string, seq uint64, orderKey, payloadJSON string) {
	s.netQueue = append(s.netQueue, NetEvent{
		Sender:      sender,
		Seq:         seq,
		OrderKey:    orderKey,
		PayloadJSON: payloadJSON,
	})
}

// BeginTick drains and sorts the queued injections/events into a fresh
// InputSnapshot, leaving the queues empty for the next tick.
func (s *DetSam) BeginTick(tickID signal.TickID) InputSnapshot {
	ai := s.aiQueue
	s.aiQueue = nil
	sort.Slice(ai, func(i, j int) bool { return seulgiLess(ai[i], ai[j]) })

	net := s.netQueue
	s.netQueue = nil
	sort.Slice(net, func(i, j int) bool { return netEventLess(net[i], net[j]) })

	return InputSnapshot{
		TickID:       tickID,
		Dt:           s.Dt,
		KeysPressed:  s.KeysPressed,
		LastKeyName:  s.LastKeyName,
		PointerX:     s.PointerX,
		PointerY:     s.PointerY,
		AiInjections: ai,
		NetEvents:    net,
		RngSeed:      s.RngSeed,
	}
}
