package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/calliope-space/telemhist/internal/core/domain"
)

// SubRecord describes one fixed-size section of the snapshot layout.
//
// Encode must write exactly Size bytes into its buffer; Decode must read
// exactly Size bytes. The concatenation order and the total record size
// are derived from SubRecords(), never summed by hand.
type SubRecord struct {
	Name   string
	Size   int
	Encode func(*domain.Snapshot, []byte)
	Decode func(*domain.Snapshot, []byte)
}

// SubRecords returns the canonical, ordered sub-record table.
//
// The order must match between write and read paths. It is the order of
// the fields of domain.Snapshot.
func SubRecords() []SubRecord {
	return subRecords
}

var subRecords = []SubRecord{
	{Name: "time_order", Size: timeOrderSize, Encode: encodeTimeOrder, Decode: decodeTimeOrder},
	{Name: "obc", Size: obcSize, Encode: encodeOBC, Decode: decodeOBC},
	{Name: "eps", Size: epsSize, Encode: encodeEPS, Decode: decodeEPS},
	{Name: "uhf", Size: uhfSize, Encode: encodeUHF, Decode: decodeUHF},
	{Name: "sband", Size: sbandSize, Encode: encodeSBand, Decode: decodeSBand},
}

// SnapshotSize returns the total encoded record size in bytes.
func SnapshotSize() int {
	total := 0
	for _, sr := range subRecords {
		total += sr.Size
	}
	return total
}

// EncodeSnapshot encodes a snapshot into the canonical record layout.
func EncodeSnapshot(s *domain.Snapshot) []byte {
	out := make([]byte, SnapshotSize())
	off := 0
	for _, sr := range subRecords {
		sr.Encode(s, out[off:off+sr.Size])
		off += sr.Size
	}
	return out
}

// DecodeSnapshot decodes a record previously produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (*domain.Snapshot, error) {
	if len(data) != SnapshotSize() {
		return nil, domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("record size %d, want %d", len(data), SnapshotSize()))
	}
	s := &domain.Snapshot{}
	off := 0
	for _, sr := range subRecords {
		sr.Decode(s, data[off:off+sr.Size])
		off += sr.Size
	}
	return s, nil
}

// cursor is a tiny helper that walks a sub-record buffer field by field.
type cursor struct {
	b   []byte
	off int
}

func (c *cursor) putU8(v uint8)   { c.b[c.off] = v; c.off++ }
func (c *cursor) putU16(v uint16) { binary.BigEndian.PutUint16(c.b[c.off:], v); c.off += 2 }
func (c *cursor) putU32(v uint32) { binary.BigEndian.PutUint32(c.b[c.off:], v); c.off += 4 }
func (c *cursor) putI16(v int16)  { c.putU16(uint16(v)) }

func (c *cursor) u8() uint8   { v := c.b[c.off]; c.off++; return v }
func (c *cursor) u16() uint16 { v := binary.BigEndian.Uint16(c.b[c.off:]); c.off += 2; return v }
func (c *cursor) u32() uint32 { v := binary.BigEndian.Uint32(c.b[c.off:]); c.off += 4; return v }
func (c *cursor) i16() int16  { return int16(c.u16()) }
