package nurigym

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)

// EpisodeHash concatenates each step's raw-i64 observation, action,
// reward, next-observation and done flag in order and BLAKE3-hashes
// the result, giving a single pinned digest per (seed, actions)
// pair — the cross-platform conformance seal for "pendulum
// determinism" (spec.md §8).
func EpisodeHash(steps []Step) [32]byte {
	buf := make([]byte, 0, len(steps)*8*6)
	for _, s := range steps {
		buf = appendI64(buf, s.Observation[0].RawI64())
		buf = appendI64(buf, s.Observation[1].RawI64())
		buf = appendI64(buf, s.Action)
		buf = appendI64(buf, s.Reward.RawI64())
		buf = appendI64(buf, s.NextObservation[0].RawI64())
		buf = appendI64(buf, s.NextObservation[1].RawI64())
		done := int64(0)
		if s.Done {
			done = 1
		}
		buf = appendI64(buf, done)
	}
	return blake3.Sum256(buf)
}

func appendI64(buf []byte, v int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return append(buf, b[:]...)
}
