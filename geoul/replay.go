package geoul

import (
	"fmt"

	"github.com/tongosu/ddonirang/iyagi"
	"github.com/tongosu/ddonirang/nuri"
	"github.com/tongosu/ddonirang/sam"
	"github.com/tongosu/ddonirang/signal"
)

// Mismatch is the outcome of a divergent replay: the earliest tick at
// which the recomputed state hash differs from the recorded one
// (spec.md §4.6, §7 "replay divergence").
type Mismatch struct {
	Madi         uint64
	ExpectedHash [32]byte
	ActualHash   [32]byte
	PatchHex     string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("geoul: replay mismatch at madi=%d expected=blake3:%x actual=blake3:%x",
		m.Madi, m.ExpectedHash, m.ActualHash)
}

// recordedFrame is one decoded frame loaded ahead of verification.
type recordedFrame struct {
	madi         uint64
	snapshot     sam.InputSnapshot
	expectedHash [32]byte
	patchHex     string
}

// VerifyReplay re-derives a Patch for each recorded InputSnapshot via
// iy (which must be the same closed Iyagi that produced the log),
// applies it to a fresh World, and compares the resulting state hash
// against what was recorded. It stops at and returns the first
// mismatch; a nil Mismatch means every tick in [seekMadi, untilMadi]
// reproduced bit-for-bit.
func VerifyReplay(reader *BundleReader, iy iyagi.Iyagi, untilMadi, seekMadi uint64) (*Mismatch, error) {
	frameCount := reader.FrameCount()
	if frameCount == 0 {
		return nil, fmt.Errorf("geoul: empty log, nothing to replay")
	}
	maxMadi := frameCount - 1
	if untilMadi > maxMadi {
		return nil, fmt.Errorf("geoul: until=%d exceeds max=%d", untilMadi, maxMadi)
	}
	if seekMadi > untilMadi {
		return nil, fmt.Errorf("geoul: seek=%d exceeds until=%d", seekMadi, untilMadi)
	}

	frames := make([]recordedFrame, 0, untilMadi+1)
	for madi := uint64(0); madi <= untilMadi; madi++ {
		raw, err := reader.ReadRawFrame(madi)
		if err != nil {
			return nil, err
		}
		if raw.Madi != madi {
			return nil, fmt.Errorf("geoul: frame madi mismatch expected=%d got=%d", madi, raw.Madi)
		}
		snapshot, err := DecodeSnapshot(raw.SnapshotBytes)
		if err != nil {
			return nil, err
		}
		if snapshot.TickID != madi {
			return nil, fmt.Errorf("geoul: snapshot madi mismatch expected=%d got=%d", madi, snapshot.TickID)
		}
		frames = append(frames, recordedFrame{
			madi:         madi,
			snapshot:     snapshot,
			expectedHash: raw.StateHash,
			patchHex:     fmt.Sprintf("%x", raw.PatchBytes),
		})
	}

	manager := nuri.NewManager()
	sink := &signal.VecSink{}

	for _, frame := range frames {
		patch := iy.RunUpdate(manager.World(), &frame.snapshot)
		manager.World().ApplyPatch(patch, frame.snapshot.TickID, sink)

		if frame.madi < seekMadi {
			continue
		}
		actual := manager.World().StateHash()
		if actual != frame.expectedHash {
			return &Mismatch{
				Madi:         frame.madi,
				ExpectedHash: frame.expectedHash,
				ActualHash:   actual,
				PatchHex:     frame.patchHex,
			}, nil
		}
	}

	return nil, nil
}
