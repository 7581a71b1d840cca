package nuri

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tongosu/ddonirang/fixed64"
	"github.com/tongosu/ddonirang/iyagi"
	"github.com/tongosu/ddonirang/signal"
	"github.com/tongosu/ddonirang/units"
)

func lengthDim() units.UnitDim { return units.UnitDim{Symbol: "length"} }
func massDim() units.UnitDim   { return units.UnitDim{Symbol: "mass"} }

func lengthMassRegistry() *units.Registry {
	return units.NewRegistry([]units.UnitSpec{
		{Unit: units.Unit{Symbol: "m", Dim: lengthDim()}, BaseUnit: "m"},
		{Unit: units.Unit{Symbol: "kg", Dim: massDim()}, BaseUnit: "kg"},
	})
}

func TestDivByZeroOnExistingResourceLeavesValueAndEmitsFaultAndDiag(t *testing.T) {
	w := New()
	w.SetResourceFixed64("x", fixed64.FromI64(7))

	patch := iyagi.Patch{
		Origin: iyagi.SystemOrigin("test"),
		Ops: []iyagi.PatchOp{
			iyagi.DivAssignResourceFixed64("x", fixed64.Zero, 1, "rule.x /= 0", nil, nil),
		},
	}

	sink := &signal.VecSink{}
	w.ApplyPatch(patch, 1, sink)

	v, ok := w.GetResourceFixed64("x")
	assert.True(t, ok)
	assert.True(t, v.Equal(fixed64.FromI64(7)))

	assert.Len(t, sink.Signals, 1)
	assert.Equal(t, signal.KindArithmeticFault, sink.Signals[0].Kind)
	assert.Len(t, sink.DiagEvents, 1)
	assert.Equal(t, reasonDivByZero, sink.DiagEvents[0].Reason)
}

func TestDivByZeroOnMissingResourceOnlyEmitsFault(t *testing.T) {
	w := New()

	patch := iyagi.Patch{
		Origin: iyagi.SystemOrigin("test"),
		Ops: []iyagi.PatchOp{
			iyagi.DivAssignResourceFixed64("missing", fixed64.Zero, 1, "rule.missing /= 0", nil, nil),
		},
	}

	sink := &signal.VecSink{}
	w.ApplyPatch(patch, 1, sink)

	_, ok := w.GetResourceFixed64("missing")
	assert.False(t, ok)

	assert.Len(t, sink.Signals, 1)
	assert.Empty(t, sink.DiagEvents)
}

func TestDivAssignWritesSaturatingQuotientOnNonZeroRhs(t *testing.T) {
	w := New()
	w.SetResourceFixed64("x", fixed64.FromI64(10))

	patch := iyagi.Patch{
		Origin: iyagi.SystemOrigin("test"),
		Ops: []iyagi.PatchOp{
			iyagi.DivAssignResourceFixed64("x", fixed64.FromI64(2), 1, "rule.x /= 2", nil, nil),
		},
	}

	w.ApplyPatch(patch, 1, &signal.VecSink{})

	v, ok := w.GetResourceFixed64("x")
	assert.True(t, ok)
	assert.True(t, v.Equal(fixed64.FromI64(5)))
}

func TestGuardViolationDropsOriginAssignmentsAndMarksEntity(t *testing.T) {
	w := New()

	patch := iyagi.Patch{
		Origin: iyagi.EntityOrigin(7),
		Ops: []iyagi.PatchOp{
			iyagi.SetResourceFixed64("x", fixed64.FromI64(99)),
			iyagi.GuardViolation(7, "rule.no_negative_hp"),
		},
	}

	sink := &signal.VecSink{}
	w.ApplyPatch(patch, 1, sink)

	_, ok := w.GetResourceFixed64("x")
	assert.False(t, ok, "entity-origin write must be retracted when the patch's own origin entity is named by a GuardViolation")

	rv, ok := w.GetComponentJSON(7, RuleViolatedTag)
	assert.True(t, ok)
	assert.Equal(t, guardTrueValue, rv)

	dv, ok := w.GetComponentJSON(7, DormantTag)
	assert.True(t, ok)
	assert.Equal(t, guardTrueValue, dv)

	assert.Len(t, sink.DiagEvents, 1)
	assert.Equal(t, reasonGuardViolation, sink.DiagEvents[0].Reason)
}

func TestGuardViolationNamingOtherEntityDoesNotRetractWrites(t *testing.T) {
	w := New()

	patch := iyagi.Patch{
		Origin: iyagi.EntityOrigin(7),
		Ops: []iyagi.PatchOp{
			iyagi.SetResourceFixed64("x", fixed64.FromI64(99)),
			iyagi.GuardViolation(8, "rule.some_other_entity"),
		},
	}

	w.ApplyPatch(patch, 1, &signal.VecSink{})

	v, ok := w.GetResourceFixed64("x")
	assert.True(t, ok)
	assert.True(t, v.Equal(fixed64.FromI64(99)))
}

func TestGuardViolationInSystemOriginPatchDoesNotRetractWrites(t *testing.T) {
	w := New()

	patch := iyagi.Patch{
		Origin: iyagi.SystemOrigin("spawner"),
		Ops: []iyagi.PatchOp{
			iyagi.SetResourceFixed64("x", fixed64.FromI64(99)),
			iyagi.GuardViolation(7, "rule.no_negative_hp"),
		},
	}

	w.ApplyPatch(patch, 1, &signal.VecSink{})

	v, ok := w.GetResourceFixed64("x")
	assert.True(t, ok, "system-origin writes are never deferred, so a GuardViolation naming an unrelated entity cannot retract them")
	assert.True(t, v.Equal(fixed64.FromI64(99)))
}

func TestAddAssignUnitValueWritesSaturatingSumOnMatchingDimension(t *testing.T) {
	reg := lengthMassRegistry()
	w := New()
	w.SetResourceFixed64("pos@m", fixed64.FromI64(3))

	operand, err := reg.ResolveUnitValue("m", fixed64.FromI64(4).RawI64())
	assert.NoError(t, err)

	patch := iyagi.Patch{
		Origin: iyagi.SystemOrigin("test"),
		Ops: []iyagi.PatchOp{
			iyagi.AddAssignResourceUnitValue("pos@m", lengthDim(), operand, 1, "rule.pos += 4m", nil, nil),
		},
	}

	sink := &signal.VecSink{}
	w.ApplyPatch(patch, 1, sink)

	v, ok := w.GetResourceFixed64("pos@m")
	assert.True(t, ok)
	assert.True(t, v.Equal(fixed64.FromI64(7)))
	assert.Empty(t, sink.Signals)
	assert.Empty(t, sink.DiagEvents)
}

func TestAddAssignUnitValueOnMissingResourceDefaultsToZero(t *testing.T) {
	reg := lengthMassRegistry()
	w := New()

	operand, err := reg.ResolveUnitValue("m", fixed64.FromI64(4).RawI64())
	assert.NoError(t, err)

	patch := iyagi.Patch{
		Origin: iyagi.SystemOrigin("test"),
		Ops: []iyagi.PatchOp{
			iyagi.AddAssignResourceUnitValue("pos@m", lengthDim(), operand, 1, "rule.pos += 4m", nil, nil),
		},
	}

	w.ApplyPatch(patch, 1, &signal.VecSink{})

	v, ok := w.GetResourceFixed64("pos@m")
	assert.True(t, ok)
	assert.True(t, v.Equal(fixed64.FromI64(4)))
}

func TestAddAssignUnitValueDimensionMismatchEmitsFaultAndLeavesValueUnchanged(t *testing.T) {
	reg := lengthMassRegistry()
	w := New()
	w.SetResourceFixed64("pos@m", fixed64.FromI64(3))

	operand, err := reg.ResolveUnitValue("kg", fixed64.FromI64(2).RawI64())
	assert.NoError(t, err)

	patch := iyagi.Patch{
		Origin: iyagi.SystemOrigin("test"),
		Ops: []iyagi.PatchOp{
			iyagi.AddAssignResourceUnitValue("pos@m", lengthDim(), operand, 1, "rule.pos += 2kg", nil, nil),
		},
	}

	sink := &signal.VecSink{}
	w.ApplyPatch(patch, 1, sink)

	v, ok := w.GetResourceFixed64("pos@m")
	assert.True(t, ok)
	assert.True(t, v.Equal(fixed64.FromI64(3)), "mismatched-dimension add must leave the resource untouched")

	assert.Len(t, sink.Signals, 1)
	assert.Equal(t, signal.KindArithmeticFault, sink.Signals[0].Kind)
	assert.Equal(t, signal.FaultDimensionMismatch, sink.Signals[0].ArithmeticFault.Kind.Tag)
	assert.Equal(t, "length", sink.Signals[0].ArithmeticFault.Kind.Left)
	assert.Equal(t, "mass", sink.Signals[0].ArithmeticFault.Kind.Right)

	assert.Len(t, sink.DiagEvents, 1)
	assert.Equal(t, reasonDimensionMismatch, sink.DiagEvents[0].Reason)
}

func TestStateHashIsStableUnderInsertionOrder(t *testing.T) {
	a := New()
	a.SetResourceFixed64("b", fixed64.FromI64(2))
	a.SetResourceFixed64("a", fixed64.FromI64(1))
	a.SetComponentJSON(2, "pos", `{"x":1}`)
	a.SetComponentJSON(1, "pos", `{"x":0}`)

	b := New()
	b.SetComponentJSON(1, "pos", `{"x":0}`)
	b.SetResourceFixed64("a", fixed64.FromI64(1))
	b.SetComponentJSON(2, "pos", `{"x":1}`)
	b.SetResourceFixed64("b", fixed64.FromI64(2))

	assert.Equal(t, a.StateHash(), b.StateHash())
}

func TestStateHashChangesOnResourceMutation(t *testing.T) {
	w := New()
	w.SetResourceFixed64("hp", fixed64.FromI64(10))
	before := w.StateHash()

	w.SetResourceFixed64("hp", fixed64.FromI64(9))
	after := w.StateHash()

	assert.NotEqual(t, before, after)
}
