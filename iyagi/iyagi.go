// Package iyagi defines the declarative Patch/PatchOp vocabulary and the
// Iyagi capability interface. An Iyagi never mutates the world directly;
// its only output is a Patch that Nuri later applies (spec.md §3/§4.4).
package iyagi

import (
	"github.com/tongosu/ddonirang/fixed64"
	"github.com/tongosu/ddonirang/sam"
	"github.com/tongosu/ddonirang/signal"
	"github.com/tongosu/ddonirang/units"
)

// EntityID identifies one entity in the world's component store.
type EntityID uint64

// OriginKind discriminates Origin.
type OriginKind int

const (
	OriginSystem OriginKind = iota
	OriginEntity
)

// Origin is System{Source} or Entity(ID); it determines which writes a
// GuardViolation op targeting the same entity retracts.
type Origin struct {
	Kind   OriginKind
	Source string
	Entity EntityID
}

// SystemOrigin constructs a System-origin with the given source label.
func SystemOrigin(source string) Origin {
	return Origin{Kind: OriginSystem, Source: source}
}

// EntityOrigin constructs an Entity-origin for id.
func EntityOrigin(id EntityID) Origin {
	return Origin{Kind: OriginEntity, Entity: id}
}

// PatchOpKind discriminates PatchOp.
type PatchOpKind int

const (
	OpSetResourceFixed64 PatchOpKind = iota
	OpSetResourceJSON
	OpDivAssignResourceFixed64
	OpSetComponentJSON
	OpGuardViolation
	OpAddAssignResourceUnitValue
)

// PatchOp is one declarative mutation. Exactly the fields relevant to
// Kind are populated; the rest are zero.
type PatchOp struct {
	Kind PatchOpKind

	// OpSetResourceFixed64
	Tag   string
	Value fixed64.Fixed64

	// OpSetResourceJSON / OpSetComponentJSON
	JSON string

	// OpDivAssignResourceFixed64
	Rhs        fixed64.Fixed64
	TickID     signal.TickID
	Location   string
	SourceSpan *signal.SourceSpan
	Expr       *signal.ExprTrace

	// OpSetComponentJSON / OpGuardViolation
	Entity EntityID

	// OpGuardViolation
	RuleID string

	// OpAddAssignResourceUnitValue: TargetDim is the dimension the
	// target resource was established in; Operand is the resolved
	// right-hand value being added. A mismatched Operand.Unit.Dim
	// emits an ArithmeticFault{DimensionMismatch} instead of writing.
	TargetDim units.UnitDim
	Operand   units.UnitValue
}

// SetResourceFixed64 constructs a SetResourceFixed64 op.
func SetResourceFixed64(tag string, value fixed64.Fixed64) PatchOp {
	return PatchOp{Kind: OpSetResourceFixed64, Tag: tag, Value: value}
}

// SetResourceJSON constructs a SetResourceJson op.
func SetResourceJSON(tag, json string) PatchOp {
	return PatchOp{Kind: OpSetResourceJSON, Tag: tag, JSON: json}
}

// DivAssignResourceFixed64 constructs a DivAssignResourceFixed64 op.
func DivAssignResourceFixed64(tag string, rhs fixed64.Fixed64, tickID signal.TickID, location string, span *signal.SourceSpan, expr *signal.ExprTrace) PatchOp {
	return PatchOp{
		Kind:       OpDivAssignResourceFixed64,
		Tag:        tag,
		Rhs:        rhs,
		TickID:     tickID,
		Location:   location,
		SourceSpan: span,
		Expr:       expr,
	}
}

// SetComponentJSON constructs a SetComponentJson op.
func SetComponentJSON(entity EntityID, tag, json string) PatchOp {
	return PatchOp{Kind: OpSetComponentJSON, Entity: entity, Tag: tag, JSON: json}
}

// GuardViolation constructs a GuardViolation op.
func GuardViolation(entity EntityID, ruleID string) PatchOp {
	return PatchOp{Kind: OpGuardViolation, Entity: entity, RuleID: ruleID}
}

// AddAssignResourceUnitValue constructs an AddAssignResourceUnitValue
// op: add operand onto tag's current value, provided operand's unit
// shares tag's established dimension (targetDim).
func AddAssignResourceUnitValue(tag string, targetDim units.UnitDim, operand units.UnitValue, tickID signal.TickID, location string, span *signal.SourceSpan, expr *signal.ExprTrace) PatchOp {
	return PatchOp{
		Kind:       OpAddAssignResourceUnitValue,
		Tag:        tag,
		TargetDim:  targetDim,
		Operand:    operand,
		TickID:     tickID,
		Location:   location,
		SourceSpan: span,
		Expr:       expr,
	}
}

// Patch is an ordered list of ops plus the origin that produced them.
type Patch struct {
	Ops    []PatchOp
	Origin Origin
}

// WorldReader is the read-only view of NuriWorld that an Iyagi may
// consult (implemented by nuri.World; declared here to avoid a
// dependency cycle between iyagi and nuri).
type WorldReader interface {
	GetResourceFixed64(tag string) (fixed64.Fixed64, bool)
	GetResourceJSON(tag string) (string, bool)
	GetComponentJSON(entity EntityID, tag string) (string, bool)
}

// Iyagi is the story/update capability: it observes a read-only world
// and input snapshot and produces a Patch. Implementations must not
// consult wall-clock time or any other nondeterministic source — the
// same snapshot must always reproduce the same Patch ("closed input",
// spec.md §4.4).
type Iyagi interface {
	RunStartup(world WorldReader) Patch
	RunUpdate(world WorldReader, input *sam.InputSnapshot) Patch
}
