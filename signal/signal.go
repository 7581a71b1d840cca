// Package signal defines the kernel's tagged signal values (arithmetic
// faults, named alrim events, diagnostic records) and the sink
// abstraction that collects them. Signals are value types: they never
// reference NuriWorld, only copies of whatever data they carry, so they
// can flow freely between Fixed64, Nuri and the Alrim cascade without
// creating a back-reference into world state (spec.md §9).
package signal

// TickID identifies one logical step ("madi") of the engine.
type TickID = uint64

// Kind discriminates the Signal sum type.
type Kind int

const (
	KindArithmeticFault Kind = iota
	KindAlrim
	KindDiag
)

// FaultKind discriminates ArithmeticFaultKind.
type FaultKind int

const (
	FaultDivByZero FaultKind = iota
	FaultDimensionMismatch
)

// ArithmeticFaultKind is DivByZero or DimensionMismatch{Left,Right}.
// Left/Right are opaque dimension tags (see package units); signal does
// not depend on units to avoid a cycle, so the fields are plain strings
// carrying each dimension's UnitDim.Symbol.
type ArithmeticFaultKind struct {
	Tag   FaultKind
	Left  string
	Right string
}

// SourceSpan locates a fault in externally-authored source text.
type SourceSpan struct {
	File      string
	StartLine uint32
	StartCol  *uint32
	EndLine   uint32
	EndCol    *uint32
}

// ExprTrace optionally carries the expression that produced a fault.
type ExprTrace struct {
	Tag  string
	Text *string
}

// FaultContext carries the tick, a location string, and optional source
// span / expression trace for a fault.
type FaultContext struct {
	TickID     TickID
	Location   string
	SourceSpan *SourceSpan
	Expr       *ExprTrace
}

// ArithmeticFault is the payload of Signal{Kind: KindArithmeticFault}.
type ArithmeticFault struct {
	Ctx  FaultContext
	Kind ArithmeticFaultKind
}

// DiagEvent is a structured diagnostic record, field order matching
// spec.md §3/§6 exactly (NDJSON field order follows struct order).
type DiagEvent struct {
	Madi         TickID
	Seq          uint64
	FaultID      string
	RuleID       string
	Reason       string
	SubReason    *string
	Mode         *string
	ContractKind *string
	Origin       string
	Targets      []string
	SamHash      *string
	SourceSpan   *SourceSpan
	Expr         *ExprTrace
	Message      *string
}

// Signal is the tagged sum: ArithmeticFault, Alrim{Name}, Diag{Event}.
// Exactly one of the payload fields is populated, selected by Kind.
type Signal struct {
	Kind            Kind
	ArithmeticFault *ArithmeticFault
	AlrimName       string
	Diag            *DiagEvent
}

// Name returns the signal's name as used by Alrim log entries:
// "차원고장" for a dimension mismatch, "산술고장" for any other
// arithmetic fault, the Alrim payload's own name for KindAlrim, and
// "diag" for KindDiag.
func (s Signal) Name() string {
	switch s.Kind {
	case KindArithmeticFault:
		if s.ArithmeticFault != nil && s.ArithmeticFault.Kind.Tag == FaultDimensionMismatch {
			return "차원고장"
		}
		return "산술고장"
	case KindAlrim:
		return s.AlrimName
	case KindDiag:
		return "diag"
	default:
		return ""
	}
}

// Alrim constructs a named Alrim signal.
func Alrim(name string) Signal {
	return Signal{Kind: KindAlrim, AlrimName: name}
}

// DiagSignal constructs a Diag signal wrapping event.
func DiagSignal(event DiagEvent) Signal {
	return Signal{Kind: KindDiag, Diag: &event}
}

// Sink is a consumer capability: emit appends a signal.
type Sink interface {
	Emit(Signal)
}

// VecSink is the reference Sink: it partitions Diag signals into a
// separate stream from everything else, matching the split the spec's
// "reference sink" describes in §3.
type VecSink struct {
	Signals    []Signal
	DiagEvents []DiagEvent
}

// Emit appends signal to the appropriate stream.
func (v *VecSink) Emit(s Signal) {
	if s.Kind == KindDiag && s.Diag != nil {
		v.DiagEvents = append(v.DiagEvents, *s.Diag)
		return
	}
	v.Signals = append(v.Signals, s)
}
