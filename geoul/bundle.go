package geoul

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tongosu/ddonirang/engine"
	"github.com/tongosu/ddonirang/iyagi"
)

// manifestName is the bundle's single metadata file; per-frame records
// live alongside it as frame-%06d.bin.
const manifestName = "manifest.txt"

// BundleWriter appends TickFrames to an on-disk directory in the format
// spec.md §6 describes: one record per frame containing a little-endian
// header, the canonical snapshot encoding, and a patch blob.
type BundleWriter struct {
	dir      string
	bundleID uuid.UUID
	codec    *snapshotCodec
	count    uint64
}

// NewBundleWriter creates (or reuses) dir and writes its manifest.
func NewBundleWriter(dir string) (*BundleWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("geoul: create bundle dir: %w", err)
	}
	id := uuid.New()
	w := &BundleWriter{dir: dir, bundleID: id, codec: newSnapshotCodec()}
	if err := os.WriteFile(filepath.Join(dir, manifestName), []byte(id.String()+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("geoul: write manifest: %w", err)
	}
	return w, nil
}

// Record writes frame as the next sequential record. Patch encoding is
// a diagnostic-only byte form (used for the replay verifier's
// patch_hex output on mismatch); it is never hashed and never drives
// replay, so its exact layout is not part of the cross-language
// contract the way the snapshot and state-hash encodings are.
func (w *BundleWriter) Record(frame engine.TickFrame) {
	snapshotBytes := w.codec.EncodeSnapshot(frame.Snapshot)
	patchBytes := encodePatchDiagnostic(frame.Patch)

	var header [8 + 32 + 4 + 4]byte
	binary.LittleEndian.PutUint64(header[0:8], frame.Snapshot.TickID)
	copy(header[8:40], frame.StateHash[:])
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(snapshotBytes)))
	binary.LittleEndian.PutUint32(header[44:48], uint32(len(patchBytes)))

	var out []byte
	out = append(out, header[:]...)
	out = append(out, snapshotBytes...)
	out = append(out, patchBytes...)

	path := filepath.Join(w.dir, frameFileName(w.count))
	if err := os.WriteFile(path, out, 0o644); err != nil {
		panic(fmt.Sprintf("geoul: write frame %d: %v", w.count, err))
	}
	w.count++
}

func frameFileName(index uint64) string {
	return fmt.Sprintf("frame-%06d.bin", index)
}

// encodePatchDiagnostic renders a Patch as a flat, human-hex-friendly
// byte blob: one line per op, tab-separated fields, in the teacher's
// plain key/value log style rather than a dense binary tag scheme.
func encodePatchDiagnostic(patch iyagi.Patch) []byte {
	var out []byte
	out = append(out, []byte(fmt.Sprintf("origin=%s\n", originDiagString(patch.Origin)))...)
	for _, op := range patch.Ops {
		out = append(out, []byte(opDiagString(op)+"\n")...)
	}
	return out
}

func originDiagString(o iyagi.Origin) string {
	if o.Kind == iyagi.OriginEntity {
		return fmt.Sprintf("entity:%d", o.Entity)
	}
	return "system:" + o.Source
}

func opDiagString(op iyagi.PatchOp) string {
	switch op.Kind {
	case iyagi.OpSetResourceFixed64:
		return fmt.Sprintf("set_resource_fixed64\t%s\t%d", op.Tag, op.Value.RawI64())
	case iyagi.OpSetResourceJSON:
		return fmt.Sprintf("set_resource_json\t%s\t%s", op.Tag, op.JSON)
	case iyagi.OpDivAssignResourceFixed64:
		return fmt.Sprintf("div_assign_resource_fixed64\t%s\t%d", op.Tag, op.Rhs.RawI64())
	case iyagi.OpSetComponentJSON:
		return fmt.Sprintf("set_component_json\t%d\t%s\t%s", op.Entity, op.Tag, op.JSON)
	case iyagi.OpGuardViolation:
		return fmt.Sprintf("guard_violation\t%d\t%s", op.Entity, op.RuleID)
	default:
		return "unknown_op"
	}
}

// BundleReader reads frame records back out of a directory written by
// BundleWriter.
type BundleReader struct {
	dir   string
	count uint64
}

// OpenBundleReader scans dir for sequential frame-%06d.bin records.
func OpenBundleReader(dir string) (*BundleReader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("geoul: open bundle dir: %w", err)
	}
	var count uint64
	for _, e := range entries {
		if e.Name() != manifestName {
			count++
		}
	}
	return &BundleReader{dir: dir, count: count}, nil
}

func (r *BundleReader) FrameCount() uint64 {
	return r.count
}

// RawFrame is one decoded on-disk record: header fields plus the raw
// snapshot/patch byte blobs.
type RawFrame struct {
	Madi          uint64
	StateHash     [32]byte
	SnapshotBytes []byte
	PatchBytes    []byte
}

func (r *BundleReader) ReadRawFrame(index uint64) (RawFrame, error) {
	if index >= r.count {
		return RawFrame{}, &ErrFrameNotFound{Index: index}
	}
	path := filepath.Join(r.dir, frameFileName(index))
	data, err := os.ReadFile(path)
	if err != nil {
		return RawFrame{}, fmt.Errorf("geoul: read frame %d: %w", index, err)
	}
	if len(data) < 48 {
		return RawFrame{}, fmt.Errorf("geoul: frame %d truncated header", index)
	}
	madi := binary.LittleEndian.Uint64(data[0:8])
	var stateHash [32]byte
	copy(stateHash[:], data[8:40])
	snapshotLen := binary.LittleEndian.Uint32(data[40:44])
	patchLen := binary.LittleEndian.Uint32(data[44:48])

	offset := 48
	if len(data) < offset+int(snapshotLen)+int(patchLen) {
		return RawFrame{}, fmt.Errorf("geoul: frame %d truncated body", index)
	}
	snapshotBytes := data[offset : offset+int(snapshotLen)]
	offset += int(snapshotLen)
	patchBytes := data[offset : offset+int(patchLen)]

	return RawFrame{
		Madi:          madi,
		StateHash:     stateHash,
		SnapshotBytes: snapshotBytes,
		PatchBytes:    patchBytes,
	}, nil
}
