package geoul

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tongosu/ddonirang/sam"
)

// snapshotCodec tracks the previous tick's held-key mask so it can
// derive pressed/released edge masks for the canonical encoding
// (spec.md §6 lists held/pressed/released as three separate u16 fields
// even though InputSnapshot itself carries a single keys_pressed
// bitmask; the edges are derived here, the same way a renderer would
// diff consecutive snapshots).
type snapshotCodec struct {
	prevHeld uint16
}

func newSnapshotCodec() *snapshotCodec {
	return &snapshotCodec{}
}

// EncodeSnapshot produces the canonical binary form of snapshot:
// madi u64 | held_mask u16 | pressed_mask u16 | released_mask u16 |
// rng_seed u64 | net_event_count u32 | per-event fields (spec.md §6).
func (c *snapshotCodec) EncodeSnapshot(snapshot sam.InputSnapshot) []byte {
	held := uint16(snapshot.KeysPressed)
	pressed := held &^ c.prevHeld
	released := c.prevHeld &^ held
	c.prevHeld = held

	var buf bytes.Buffer
	writeU64(&buf, snapshot.TickID)
	writeU16(&buf, held)
	writeU16(&buf, pressed)
	writeU16(&buf, released)
	writeU64(&buf, snapshot.RngSeed)
	writeU32(&buf, uint32(len(snapshot.NetEvents)))
	for _, ev := range snapshot.NetEvents {
		writeU16(&buf, uint16(len(ev.Sender)))
		buf.WriteString(ev.Sender)
		writeU64(&buf, ev.Seq)
		writeU16(&buf, uint16(len(ev.OrderKey)))
		buf.WriteString(ev.OrderKey)
		writeU32(&buf, uint32(len(ev.PayloadJSON)))
		buf.WriteString(ev.PayloadJSON)
	}
	return buf.Bytes()
}

// DecodeSnapshot reverses EncodeSnapshot's net-event and held-mask
// fields. PointerX/PointerY, Dt, LastKeyName and AiInjections are not
// part of the canonical encoding and are left zero on the decoded
// value; callers that need them must carry the InputSnapshot itself,
// not just its replay-log bytes.
func DecodeSnapshot(data []byte) (sam.InputSnapshot, error) {
	r := bytes.NewReader(data)
	madi, err := readU64(r)
	if err != nil {
		return sam.InputSnapshot{}, fmt.Errorf("geoul: decode madi: %w", err)
	}
	held, err := readU16(r)
	if err != nil {
		return sam.InputSnapshot{}, fmt.Errorf("geoul: decode held_mask: %w", err)
	}
	if _, err := readU16(r); err != nil { // pressed_mask, not carried forward
		return sam.InputSnapshot{}, fmt.Errorf("geoul: decode pressed_mask: %w", err)
	}
	if _, err := readU16(r); err != nil { // released_mask, not carried forward
		return sam.InputSnapshot{}, fmt.Errorf("geoul: decode released_mask: %w", err)
	}
	rngSeed, err := readU64(r)
	if err != nil {
		return sam.InputSnapshot{}, fmt.Errorf("geoul: decode rng_seed: %w", err)
	}
	count, err := readU32(r)
	if err != nil {
		return sam.InputSnapshot{}, fmt.Errorf("geoul: decode net_event_count: %w", err)
	}

	events := make([]sam.NetEvent, 0, count)
	for i := uint32(0); i < count; i++ {
		senderLen, err := readU16(r)
		if err != nil {
			return sam.InputSnapshot{}, fmt.Errorf("geoul: decode sender_len: %w", err)
		}
		sender, err := readString(r, int(senderLen))
		if err != nil {
			return sam.InputSnapshot{}, fmt.Errorf("geoul: decode sender: %w", err)
		}
		seq, err := readU64(r)
		if err != nil {
			return sam.InputSnapshot{}, fmt.Errorf("geoul: decode seq: %w", err)
		}
		orderKeyLen, err := readU16(r)
		if err != nil {
			return sam.InputSnapshot{}, fmt.Errorf("geoul: decode order_key_len: %w", err)
		}
		orderKey, err := readString(r, int(orderKeyLen))
		if err != nil {
			return sam.InputSnapshot{}, fmt.Errorf("geoul: decode order_key: %w", err)
		}
		payloadLen, err := readU32(r)
		if err != nil {
			return sam.InputSnapshot{}, fmt.Errorf("geoul: decode payload_len: %w", err)
		}
		payload, err := readString(r, int(payloadLen))
		if err != nil {
			return sam.InputSnapshot{}, fmt.Errorf("geoul: decode payload: %w", err)
		}
		events = append(events, sam.NetEvent{Sender: sender, Seq: seq, OrderKey: orderKey, PayloadJSON: payload})
	}

	return sam.InputSnapshot{
		TickID:      madi,
		KeysPressed: uint64(held),
		NetEvents:   events,
		RngSeed:     rngSeed,
	}, nil
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func readU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readString(r *bytes.Reader, n int) (string, error) {
	b := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}
