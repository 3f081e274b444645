package linkserver

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the hard upper bound on frame payloads. A frame
// length field is 16 bits, so no larger payload can be expressed.
const MaxFrameSize = 65535

// ErrFrameTooLarge indicates a frame exceeding the configured limit.
var ErrFrameTooLarge = errors.New("linkserver: frame exceeds size limit")

// ReadFrame reads one length-prefixed frame from r. The prefix is a
// big-endian uint16 payload length; maxSize rejects oversized frames
// before the payload is read.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	var prefix [2]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	length := int(binary.BigEndian.Uint16(prefix[:]))
	if maxSize > 0 && length > maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, maxSize)
	}
	if length == 0 {
		return nil, nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes one length-prefixed frame to w.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(payload), MaxFrameSize)
	}

	buf := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(buf, uint16(len(payload)))
	copy(buf[2:], payload)

	_, err := w.Write(buf)
	return err
}
