// Package alrim implements the bounded-pass signal cascade: each tick,
// queued signals are handed to a handler which may enqueue further
// signals for the next pass, up to ALRIM_MAX_PASSES. Anything still
// queued at the limit is carried into the next tick instead of dropped,
// preserving progress while bounding per-tick work (spec.md §4.2/§5).
package alrim

import "github.com/tongosu/ddonirang/signal"

// MaxPasses bounds the number of cascade passes per tick.
const MaxPasses = 16

// LogEntry records one signal's processing within a pass, for
// diagnostics and for the "processed vs carried" invariant in spec.md §8.
type LogEntry struct {
	TickID     signal.TickID
	PassIndex  uint8
	Name       string
	Carried    bool
}

// Handler reacts to a single signal, optionally emitting further
// signals onto out for the next pass.
type Handler interface {
	OnSignal(s signal.Signal, out signal.Sink)
}

// Logger observes each LogEntry as the cascade processes or carries a
// signal.
type Logger interface {
	OnEvent(entry LogEntry)
}

// VecLogger is the reference Logger: it just appends every entry.
type VecLogger struct {
	Entries []LogEntry
}

func (l *VecLogger) OnEvent(entry LogEntry) {
	l.Entries = append(l.Entries, entry)
}

// Loop is the stateful cascade: it owns the carryover queue that
// persists across ticks.
type Loop struct {
	carryover []signal.Signal
}

// New returns an empty cascade loop.
func New() *Loop {
	return &Loop{}
}

// CarryoverLen reports how many signals are waiting to be folded into
// the next tick's initial queue.
func (l *Loop) CarryoverLen() int {
	return len(l.carryover)
}

// TakeCarryover drains and returns the current carryover queue.
func (l *Loop) TakeCarryover() []signal.Signal {
	out := l.carryover
	l.carryover = nil
	return out
}

// RunTick drains carryover++initial through handler in FIFO passes,
// bounded by MaxPasses. Within a pass, signals are processed in
// enqueue order; across passes, each pass's output becomes the next
// pass's input, preserving per-pass FIFO order end to end.
func (l *Loop) RunTick(tickID signal.TickID, initial []signal.Signal, handler Handler, logger Logger) {
	queue := make([]signal.Signal, 0, len(l.carryover)+len(initial))
	queue = append(queue, l.carryover...)
	queue = append(queue, initial...)
	l.carryover = nil

	var passIndex uint8
	for len(queue) > 0 && passIndex < MaxPasses {
		sink := &signal.VecSink{}
		for _, s := range queue {
			logger.OnEvent(LogEntry{TickID: tickID, PassIndex: passIndex, Name: s.Name(), Carried: false})
			handler.OnSignal(s, sink)
		}
		queue = sink.Signals
		passIndex++
	}

	if len(queue) > 0 {
		for _, s := range queue {
			logger.OnEvent(LogEntry{TickID: tickID, PassIndex: passIndex, Name: s.Name(), Carried: true})
		}
		l.carryover = queue
	}
}
