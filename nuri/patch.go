package nuri

import (
	"fmt"

	"github.com/tongosu/ddonirang/fixed64"
	"github.com/tongosu/ddonirang/iyagi"
	"github.com/tongosu/ddonirang/signal"
)

const reasonGuardViolation = "GUARD_VIOLATION"
const reasonDivByZero = "DIV_BY_ZERO"
const reasonDimensionMismatch = "DIMENSION_MISMATCH"

// ApplyPatch applies patch's ops to w in order, emitting fault/diag
// signals onto sink. A GuardViolation op always writes its two reserved
// components for the named entity immediately. If patch.Origin is
// Entity(e), every Set*/DivAssign write in the patch is deferred until
// the patch has been fully processed; if any GuardViolation in that
// same patch names e, the deferred writes are dropped in their
// entirety instead of being applied (spec.md §4.3, §9 "per-op origin").
func (w *World) ApplyPatch(patch iyagi.Patch, tickID signal.TickID, sink signal.Sink) {
	deferring := patch.Origin.Kind == iyagi.OriginEntity
	violatedSelf := false
	var deferred []iyagi.PatchOp
	var seq uint64

	nextSeq := func() uint64 {
		s := seq
		seq++
		return s
	}

	apply := func(op iyagi.PatchOp) {
		switch op.Kind {
		case iyagi.OpSetResourceFixed64:
			w.SetResourceFixed64(op.Tag, op.Value)
		case iyagi.OpSetResourceJSON:
			w.SetResourceJSON(op.Tag, op.JSON)
		case iyagi.OpSetComponentJSON:
			w.SetComponentJSON(op.Entity, op.Tag, op.JSON)
		case iyagi.OpDivAssignResourceFixed64:
			w.applyDivAssign(op, tickID, patch.Origin, sink, nextSeq)
		case iyagi.OpAddAssignResourceUnitValue:
			w.applyAddAssignUnit(op, tickID, patch.Origin, sink, nextSeq)
		}
	}

	for _, op := range patch.Ops {
		switch op.Kind {
		case iyagi.OpGuardViolation:
			w.SetComponentJSON(op.Entity, RuleViolatedTag, guardTrueValue)
			w.SetComponentJSON(op.Entity, DormantTag, guardTrueValue)
			if deferring && op.Entity == patch.Origin.Entity {
				violatedSelf = true
			}
			sink.Emit(signal.DiagSignal(signal.DiagEvent{
				Madi:    tickID,
				Seq:     nextSeq(),
				FaultID: fmt.Sprintf("guard:%d:%d:%s", tickID, op.Entity, op.RuleID),
				RuleID:  op.RuleID,
				Reason:  reasonGuardViolation,
				Origin:  originString(patch.Origin),
				Targets: []string{fmt.Sprintf("entity:%d", op.Entity)},
			}))
		default:
			if deferring {
				deferred = append(deferred, op)
			} else {
				apply(op)
			}
		}
	}

	if deferring && !violatedSelf {
		for _, op := range deferred {
			apply(op)
		}
	}
}

func originString(o iyagi.Origin) string {
	if o.Kind == iyagi.OriginEntity {
		return fmt.Sprintf("entity:%d", o.Entity)
	}
	return "system:" + o.Source
}

// applyDivAssign implements DivAssignResourceFixed64: rhs=0 always
// emits an ArithmeticFault; it additionally emits a Diag event (and
// leaves the value untouched) only when the resource already exists.
// rhs!=0 computes a saturating quotient against the current value
// (defaulting to Zero when the resource is absent) and writes it.
func (w *World) applyDivAssign(op iyagi.PatchOp, tickID signal.TickID, origin iyagi.Origin, sink signal.Sink, nextSeq func() uint64) {
	current, exists := w.GetResourceFixed64(op.Tag)

	if op.Rhs.RawI64() == 0 {
		sink.Emit(signal.Signal{
			Kind: signal.KindArithmeticFault,
			ArithmeticFault: &signal.ArithmeticFault{
				Ctx: signal.FaultContext{
					TickID:     tickID,
					Location:   op.Location,
					SourceSpan: op.SourceSpan,
					Expr:       op.Expr,
				},
				Kind: signal.ArithmeticFaultKind{Tag: signal.FaultDivByZero},
			},
		})
		if exists {
			sink.Emit(signal.DiagSignal(signal.DiagEvent{
				Madi:       tickID,
				Seq:        nextSeq(),
				FaultID:    fmt.Sprintf("div0:%d:%s", tickID, op.Tag),
				Reason:     reasonDivByZero,
				Origin:     originString(origin),
				Targets:    []string{op.Tag},
				SourceSpan: op.SourceSpan,
				Expr:       op.Expr,
				Message:    strPtr(op.Location),
			}))
		}
		return
	}

	if !exists {
		current = fixed64.Zero
	}
	quotient, err := current.TryDiv(op.Rhs)
	if err != nil {
		// rhs was already checked nonzero above; TryDiv cannot fail here.
		return
	}
	w.SetResourceFixed64(op.Tag, quotient)
}

// applyAddAssignUnit implements AddAssignResourceUnitValue: a dimension
// mismatch between op.Operand's unit and op.TargetDim always emits an
// ArithmeticFault plus a Diag event and leaves the resource untouched;
// a matching dimension computes a saturating sum against the current
// value (defaulting to Zero when the resource is absent) and writes it.
func (w *World) applyAddAssignUnit(op iyagi.PatchOp, tickID signal.TickID, origin iyagi.Origin, sink signal.Sink, nextSeq func() uint64) {
	if op.Operand.Unit.Dim != op.TargetDim {
		sink.Emit(signal.Signal{
			Kind: signal.KindArithmeticFault,
			ArithmeticFault: &signal.ArithmeticFault{
				Ctx: signal.FaultContext{
					TickID:     tickID,
					Location:   op.Location,
					SourceSpan: op.SourceSpan,
					Expr:       op.Expr,
				},
				Kind: signal.ArithmeticFaultKind{
					Tag:   signal.FaultDimensionMismatch,
					Left:  op.TargetDim.Symbol,
					Right: op.Operand.Unit.Dim.Symbol,
				},
			},
		})
		sink.Emit(signal.DiagSignal(signal.DiagEvent{
			Madi:       tickID,
			Seq:        nextSeq(),
			FaultID:    fmt.Sprintf("dim:%d:%s", tickID, op.Tag),
			Reason:     reasonDimensionMismatch,
			Origin:     originString(origin),
			Targets:    []string{op.Tag},
			SourceSpan: op.SourceSpan,
			Expr:       op.Expr,
			Message:    strPtr(op.Location),
		}))
		return
	}

	current, exists := w.GetResourceFixed64(op.Tag)
	if !exists {
		current = fixed64.Zero
	}
	w.SetResourceFixed64(op.Tag, current.SaturatingAdd(fixed64.FromRawI64(op.Operand.Raw)))
}

func strPtr(s string) *string {
	return &s
}
