package proto

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var (
	ErrCommandTooLong   = errors.New("rcon: command exceeds 1014 encoded bytes")
	ErrUnexpectedFormat = errors.New("rcon: malformed frame")
	ErrResponseTooLong  = errors.New("rcon: declared frame size exceeds protocol maximum")
)

// EncodeCommand serializes one request frame: size, requestID, type, the
// UTF-8 command bytes, two NUL terminators.
func EncodeCommand(requestID, typ int32, cmd string) ([]byte, error) {
	body := []byte(cmd)
	if len(body) > MaxCommandLen {
		return nil, ErrCommandTooLong
	}
	size := MinFrameSize + len(body)
	buf := make([]byte, 4+size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(requestID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(typ))
	copy(buf[12:], body)
	// trailing two bytes stay zero
	return buf, nil
}

// DecodePacket parses the bytes after the size prefix of a frame whose
// declared size is size. The raw body is size-10 bytes; it is truncated at
// the first NUL, and a body with no NUL at all is taken whole. The returned
// Body aliases frame.
func DecodePacket(frame []byte, size int) (Packet, error) {
	if size < MinFrameSize || len(frame) < size-2 {
		return Packet{}, ErrUnexpectedFormat
	}
	p := Packet{
		RequestID: int32(binary.LittleEndian.Uint32(frame[0:4])),
		Type:      int32(binary.LittleEndian.Uint32(frame[4:8])),
	}
	body := frame[8 : 8+size-MinFrameSize]
	if i := bytes.IndexByte(body, 0); i >= 0 {
		body = body[:i]
	}
	p.Body = body
	return p, nil
}
