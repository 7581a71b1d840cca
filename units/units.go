// Package units provides the minimal dimension-tag surface the kernel
// needs to report ArithmeticFaultKind.DimensionMismatch faults. Full
// unit parsing and conversion belongs to the out-of-scope surface-form
// lexer/normalizer (spec.md §1); the kernel only needs a comparable,
// canonical symbol for the two dimensions that disagreed.
package units

import "fmt"

// UnitDim is an opaque physical-dimension tag (e.g. "m", "s", "m/s").
// Equality is plain string equality on the canonical symbol.
type UnitDim struct {
	Symbol string
}

// Unit pairs a canonical symbol with the base dimension it belongs to.
type Unit struct {
	Symbol string
	Dim    UnitDim
}

// UnitSpec is the registry entry for one recognized unit.
type UnitSpec struct {
	Unit     Unit
	BaseUnit string
}

// UnitValue is a Fixed64 magnitude tagged with its unit.
type UnitValue struct {
	Raw  int64
	Unit Unit
}

// UnitError reports an unknown or mismatched unit.
type UnitError struct {
	Reason string
	Symbol string
}

func (e *UnitError) Error() string {
	if e.Symbol == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Symbol)
}

// Registry is the recognized-unit table: callers own an instance (the
// Iyagi layer embedding the lexer's unit table builds one at startup)
// and pass it explicitly to whatever needs to resolve a symbol. There
// is no package-level registry; two callers with different unit tables
// never interfere with each other.
type Registry struct {
	bySymbol map[string]UnitSpec
}

// NewRegistry builds a Registry from specs, keyed by each spec's unit
// symbol.
func NewRegistry(specs []UnitSpec) *Registry {
	r := &Registry{bySymbol: make(map[string]UnitSpec, len(specs))}
	for _, s := range specs {
		r.bySymbol[s.Unit.Symbol] = s
	}
	return r
}

// IsKnownUnit reports whether symbol is registered.
func (r *Registry) IsKnownUnit(symbol string) bool {
	_, ok := r.bySymbol[symbol]
	return ok
}

// UnitSpecFromSymbol looks up symbol, returning an error tagged
// "unknown unit" when absent.
func (r *Registry) UnitSpecFromSymbol(symbol string) (UnitSpec, error) {
	spec, ok := r.bySymbol[symbol]
	if !ok {
		return UnitSpec{}, &UnitError{Reason: "unknown unit", Symbol: symbol}
	}
	return spec, nil
}

// CanonicalUnitSymbol returns the registry's canonical symbol for dim's
// base unit, or "" if dim has no registered base unit.
func (r *Registry) CanonicalUnitSymbol(dim UnitDim) string {
	for _, spec := range r.bySymbol {
		if spec.Unit.Dim == dim {
			return spec.BaseUnit
		}
	}
	return ""
}

// ResolveUnitValue validates symbol against the registry (spec.md §1:
// an unknown unit is returned as an explicit error to the caller, the
// tick never proceeds) and tags raw with the resolved Unit.
func (r *Registry) ResolveUnitValue(symbol string, raw int64) (UnitValue, error) {
	spec, err := r.UnitSpecFromSymbol(symbol)
	if err != nil {
		return UnitValue{}, err
	}
	return UnitValue{Raw: raw, Unit: spec.Unit}, nil
}

// ResourceTagWithUnit builds the conventional "tag@unit" resource tag
// used when a component value carries a unit alongside its Fixed64
// magnitude.
func ResourceTagWithUnit(tag string, unit Unit) string {
	if unit.Symbol == "" {
		return tag
	}
	return tag + "@" + unit.Symbol
}
