package iyagi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tongosu/ddonirang/fixed64"
	"github.com/tongosu/ddonirang/units"
)

func TestSystemOriginAndEntityOriginConstructors(t *testing.T) {
	sys := SystemOrigin("spawner")
	assert.Equal(t, OriginSystem, sys.Kind)
	assert.Equal(t, "spawner", sys.Source)

	ent := EntityOrigin(EntityID(7))
	assert.Equal(t, OriginEntity, ent.Kind)
	assert.Equal(t, EntityID(7), ent.Entity)
}

func TestPatchOpConstructorsPopulateOnlyRelevantFields(t *testing.T) {
	op := SetResourceFixed64("hp", fixed64.FromI64(10))
	assert.Equal(t, OpSetResourceFixed64, op.Kind)
	assert.Equal(t, "hp", op.Tag)
	assert.True(t, op.Value.Equal(fixed64.FromI64(10)))

	jsonOp := SetResourceJSON("meta", `{"a":1}`)
	assert.Equal(t, OpSetResourceJSON, jsonOp.Kind)
	assert.Equal(t, `{"a":1}`, jsonOp.JSON)

	compOp := SetComponentJSON(EntityID(3), "pos", `{"x":1}`)
	assert.Equal(t, OpSetComponentJSON, compOp.Kind)
	assert.Equal(t, EntityID(3), compOp.Entity)
	assert.Equal(t, "pos", compOp.Tag)

	guard := GuardViolation(EntityID(5), "no_negative_hp")
	assert.Equal(t, OpGuardViolation, guard.Kind)
	assert.Equal(t, EntityID(5), guard.Entity)
	assert.Equal(t, "no_negative_hp", guard.RuleID)

	div := DivAssignResourceFixed64("hp", fixed64.Zero, 4, "rule.ddn:1", nil, nil)
	assert.Equal(t, OpDivAssignResourceFixed64, div.Kind)
	assert.Equal(t, "hp", div.Tag)
	assert.EqualValues(t, 4, div.TickID)
	assert.Equal(t, "rule.ddn:1", div.Location)

	lengthDim := units.UnitDim{Symbol: "length"}
	operand := units.UnitValue{Raw: 4 << 32, Unit: units.Unit{Symbol: "m", Dim: lengthDim}}
	add := AddAssignResourceUnitValue("pos@m", lengthDim, operand, 4, "rule.ddn:2", nil, nil)
	assert.Equal(t, OpAddAssignResourceUnitValue, add.Kind)
	assert.Equal(t, "pos@m", add.Tag)
	assert.Equal(t, lengthDim, add.TargetDim)
	assert.Equal(t, operand, add.Operand)
	assert.EqualValues(t, 4, add.TickID)
}

func TestPatchCarriesOpsAndOrigin(t *testing.T) {
	patch := Patch{
		Ops:    []PatchOp{SetResourceFixed64("x", fixed64.FromI64(1))},
		Origin: EntityOrigin(EntityID(1)),
	}
	assert.Len(t, patch.Ops, 1)
	assert.Equal(t, OriginEntity, patch.Origin.Kind)
}
