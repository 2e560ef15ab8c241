package proto

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrConnectionClosed: peer closed the stream before a whole frame arrived.
var ErrConnectionClosed = errors.New("rcon: connection closed by peer")

// ReadFrame assembles exactly one frame from r into buf, however the stream
// fragments it. It reads the 4-byte size prefix, validates the bounds before
// touching the body, then reads the declared number of body bytes. buf must
// hold at least ReadBufSize bytes. The returned slice aliases buf and is the
// frame past the size prefix; it is valid until the next call with the same
// buffer.
//
// Timeouts are the caller's business: arm a deadline on the underlying
// connection and the net error comes back unchanged.
func ReadFrame(r io.Reader, buf []byte) ([]byte, int, error) {
	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		return nil, 0, closedOr(err)
	}
	size := int(int32(binary.LittleEndian.Uint32(buf[:4])))
	if size < MinFrameSize {
		return nil, 0, ErrUnexpectedFormat
	}
	if size > MaxFrameSize {
		return nil, 0, ErrResponseTooLong
	}
	if _, err := io.ReadFull(r, buf[4:4+size]); err != nil {
		return nil, 0, closedOr(err)
	}
	return buf[4 : 4+size], size, nil
}

// closedOr maps stream-end conditions to ErrConnectionClosed and leaves
// transport errors (deadline expiry, resets) alone.
func closedOr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrConnectionClosed
	}
	return err
}
