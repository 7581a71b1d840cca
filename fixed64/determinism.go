package fixed64

import (
	"encoding/binary"
	"fmt"

	"lukechampine.com/blake3"
)

// DeterminismVectorV1Expected is the pinned result of
// DeterminismVectorV1, fixed at these values by spec.md §8.
var DeterminismVectorV1Expected = [7]int64{
	0x0000_0001_8000_0000,
	0x0000_0000_8000_0000,
	-0x0000_0000_8000_0000,
	0x0000_0000_8000_0000,
	0x0000_0002_0000_0000,
	0x0000_0000_8000_0000,
	0x0000_0000_0000_0000,
}

// DeterminismVectorV1 computes [a+b, a-b, b-a, a*b, a/b, b/a, c+a] with
// a=1.0, b=0.5, c=-1.0 using saturating/try-div semantics, returning the
// raw int64 encoding of each result. It is the kernel's cross-platform
// conformance seal: any two conforming implementations (any OS, any
// CPU architecture) must produce this exact array.
func DeterminismVectorV1() [7]int64 {
	a := FromRawI64(0x0000_0001_0000_0000)
	b := FromRawI64(0x0000_0000_8000_0000)
	c := NegOne

	ab, err := a.TryDiv(b)
	if err != nil {
		panic("determinism_vector_v1: a/b: " + err.Error())
	}
	ba, err := b.TryDiv(a)
	if err != nil {
		panic("determinism_vector_v1: b/a: " + err.Error())
	}

	return [7]int64{
		a.SaturatingAdd(b).RawI64(),
		a.SaturatingSub(b).RawI64(),
		b.SaturatingSub(a).RawI64(),
		a.SaturatingMul(b).RawI64(),
		ab.RawI64(),
		ba.RawI64(),
		c.SaturatingAdd(a).RawI64(),
	}
}

// DeterminismSeal is the parsed form of the §6 conformance seal:
// schema=ddn.fixed64.determinism_vector.v1, status, blake3 digest and
// the raw_i64 values, ready for printing or for a process-exit check.
type DeterminismSeal struct {
	Schema   string
	Pass     bool
	Blake3   string
	RawI64   [7]int64
	Expected [7]int64
}

// ComputeDeterminismSeal runs the v1 vector and hashes its little-endian
// encoding with BLAKE3, per spec.md §4.1/§6.
func ComputeDeterminismSeal() DeterminismSeal {
	actual := DeterminismVectorV1()
	expected := DeterminismVectorV1Expected

	buf := make([]byte, 8*len(actual))
	for i, v := range actual {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	digest := blake3.Sum256(buf)

	return DeterminismSeal{
		Schema:   "ddn.fixed64.determinism_vector.v1",
		Pass:     actual == expected,
		Blake3:   fmt.Sprintf("%x", digest),
		RawI64:   actual,
		Expected: expected,
	}
}
