package nurigym

import (
	"strconv"
	"strings"
)

// ObservationSpec describes the fixed-width observation vector shape.
type ObservationSpec struct {
	SlotCount uint32
}

// DefaultObservationSpecK64 is the reference 64-slot observation spec.
func DefaultObservationSpecK64() ObservationSpec {
	return ObservationSpec{SlotCount: 64}
}

// ToDetJSON renders a canonical, field-order-stable JSON encoding (the
// same "detjson" convention the tooling's detjson command produces).
func (s ObservationSpec) ToDetJSON() string {
	return `{"schema":"nurigym.obs_spec.v1","slot_count":` + strconv.FormatUint(uint64(s.SlotCount), 10) + `}`
}

// ActionSpec names the discrete action vocabulary.
type ActionSpec struct {
	Actions []string
}

// EmptyActionSpec is an ActionSpec with no actions.
func EmptyActionSpec() ActionSpec {
	return ActionSpec{}
}

// ToDetJSON renders a canonical JSON encoding.
func (a ActionSpec) ToDetJSON() string {
	var b strings.Builder
	b.WriteString(`{"schema":"nurigym.action_spec.v1","actions":[`)
	for i, item := range a.Actions {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(escapeJSON(item))
		b.WriteByte('"')
	}
	b.WriteString("]}")
	return b.String()
}

func escapeJSON(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, ch := range input {
		switch ch {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}
