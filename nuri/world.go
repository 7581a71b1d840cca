// Package nuri owns the world: an ordered keyed resource/component
// store, its canonical BLAKE3 state hash, and patch application
// (including div-by-zero fault handling and guard-violation write
// retraction). World is exclusively owned by Nuri; everything else
// receives only a read-only view (spec.md §3/§4.3, §5).
package nuri

import (
	"encoding/binary"
	"sort"

	"lukechampine.com/blake3"

	"github.com/tongosu/ddonirang/fixed64"
	"github.com/tongosu/ddonirang/iyagi"
)

// Reserved component tags set by a GuardViolation op.
const (
	RuleViolatedTag = "#규칙위반"
	DormantTag      = "#휴면"
	guardTrueValue  = "참"
)

// ResourceKind discriminates ResourceValue.
type ResourceKind int

const (
	ResourceKindFixed64 ResourceKind = iota
	ResourceKindJSON
)

// ResourceValue is Fixed64(v) or Json(s).
type ResourceValue struct {
	Kind    ResourceKind
	Fixed64 fixed64.Fixed64
	JSON    string
}

// ComponentKey is the component store's (entity, tag) key.
type ComponentKey struct {
	Entity iyagi.EntityID
	Tag    string
}

// World is the keyed resource/component store. Iteration for hashing
// and serialization always visits keys in ascending byte-lexicographic
// order, never Go's randomized map order.
type World struct {
	resources  map[string]ResourceValue
	components map[ComponentKey]string
}

// New returns an empty world.
func New() *World {
	return &World{
		resources:  make(map[string]ResourceValue),
		components: make(map[ComponentKey]string),
	}
}

// GetResourceFixed64 returns the resource's Fixed64 value if present and
// stored as a Fixed64 (not JSON).
func (w *World) GetResourceFixed64(tag string) (fixed64.Fixed64, bool) {
	v, ok := w.resources[tag]
	if !ok || v.Kind != ResourceKindFixed64 {
		return fixed64.Fixed64{}, false
	}
	return v.Fixed64, true
}

// GetResourceJSON returns the resource's JSON string if present and
// stored as JSON.
func (w *World) GetResourceJSON(tag string) (string, bool) {
	v, ok := w.resources[tag]
	if !ok || v.Kind != ResourceKindJSON {
		return "", false
	}
	return v.JSON, true
}

// SetResourceFixed64 writes a Fixed64 resource unconditionally.
func (w *World) SetResourceFixed64(tag string, value fixed64.Fixed64) {
	w.resources[tag] = ResourceValue{Kind: ResourceKindFixed64, Fixed64: value}
}

// SetResourceJSON writes a JSON resource unconditionally.
func (w *World) SetResourceJSON(tag string, json string) {
	w.resources[tag] = ResourceValue{Kind: ResourceKindJSON, JSON: json}
}

// GetComponentJSON returns the (entity, tag) component's JSON value.
func (w *World) GetComponentJSON(entity iyagi.EntityID, tag string) (string, bool) {
	v, ok := w.components[ComponentKey{Entity: entity, Tag: tag}]
	return v, ok
}

// SetComponentJSON writes a (entity, tag) component.
func (w *World) SetComponentJSON(entity iyagi.EntityID, tag string, json string) {
	w.components[ComponentKey{Entity: entity, Tag: tag}] = json
}

func sortedResourceTags(resources map[string]ResourceValue) []string {
	tags := make([]string, 0, len(resources))
	for tag := range resources {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func sortedComponentKeys(components map[ComponentKey]string) []ComponentKey {
	keys := make([]ComponentKey, 0, len(components))
	for k := range components {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Entity != keys[j].Entity {
			return keys[i].Entity < keys[j].Entity
		}
		return keys[i].Tag < keys[j].Tag
	})
	return keys
}

// CanonicalBytes produces the canonical serialization fed to BLAKE3 for
// StateHash: for each resource (in ascending tag order) a length-prefixed
// tag, a kind byte, and a length-prefixed payload; then for each
// component (in ascending (entity,tag) order) the entity as a big-endian
// u64, a length-prefixed tag, and a length-prefixed payload. This form
// is stable across implementation languages.
func (w *World) CanonicalBytes() []byte {
	var buf []byte

	for _, tag := range sortedResourceTags(w.resources) {
		v := w.resources[tag]
		buf = appendLenPrefixed(buf, []byte(tag))
		switch v.Kind {
		case ResourceKindFixed64:
			buf = append(buf, 0)
			payload := make([]byte, 8)
			binary.BigEndian.PutUint64(payload, uint64(v.Fixed64.RawI64()))
			buf = appendLenPrefixed32(buf, payload)
		case ResourceKindJSON:
			buf = append(buf, 1)
			buf = appendLenPrefixed32(buf, []byte(v.JSON))
		}
	}

	for _, key := range sortedComponentKeys(w.components) {
		payload := w.components[key]
		entityBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(entityBytes, uint64(key.Entity))
		buf = append(buf, entityBytes...)
		buf = appendLenPrefixed(buf, []byte(key.Tag))
		buf = appendLenPrefixed32(buf, []byte(payload))
	}

	return buf
}

func appendLenPrefixed(buf []byte, data []byte) []byte {
	lenBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBytes, uint16(len(data)))
	buf = append(buf, lenBytes...)
	return append(buf, data...)
}

func appendLenPrefixed32(buf []byte, data []byte) []byte {
	lenBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBytes, uint32(len(data)))
	buf = append(buf, lenBytes...)
	return append(buf, data...)
}

// StateHash is the 32-byte BLAKE3 digest of CanonicalBytes. It depends
// only on the sorted (key,value) pairs of resources and components,
// never on Go map iteration order or insertion history.
func (w *World) StateHash() [32]byte {
	return blake3.Sum256(w.CanonicalBytes())
}
