package proto

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestEncodeDecodeCommand(t *testing.T) {
	frame, err := EncodeCommand(42, TypeExecCommand, "say hello")
	if err != nil {
		t.Fatal(err)
	}
	size := int(binary.LittleEndian.Uint32(frame[:4]))
	if size != MinFrameSize+len("say hello") {
		t.Fatalf("size field = %d", size)
	}
	if frame[len(frame)-1] != 0 || frame[len(frame)-2] != 0 {
		t.Fatal("missing NUL terminators")
	}
	p, err := DecodePacket(frame[4:], size)
	if err != nil {
		t.Fatal(err)
	}
	if p.RequestID != 42 || p.Type != TypeExecCommand || string(p.Body) != "say hello" {
		t.Fatalf("roundtrip: got %+v", p)
	}
}

func TestEncodeCommandLimit(t *testing.T) {
	if _, err := EncodeCommand(1, TypeExecCommand, strings.Repeat("a", MaxCommandLen)); err != nil {
		t.Fatalf("exactly %d bytes should pass: %v", MaxCommandLen, err)
	}
	if _, err := EncodeCommand(1, TypeExecCommand, strings.Repeat("a", MaxCommandLen+1)); err != ErrCommandTooLong {
		t.Fatalf("want ErrCommandTooLong, got %v", err)
	}
}

func TestEncodeCommandLimitIsBytesNotRunes(t *testing.T) {
	// 338 three-byte runes = 1014 encoded bytes, one more tips over.
	s := strings.Repeat("あ", 338)
	if _, err := EncodeCommand(1, TypeExecCommand, s); err != nil {
		t.Fatal(err)
	}
	if _, err := EncodeCommand(1, TypeExecCommand, s+"あ"); err != ErrCommandTooLong {
		t.Fatalf("want ErrCommandTooLong, got %v", err)
	}
}

func TestDecodePacketUndersized(t *testing.T) {
	if _, err := DecodePacket(make([]byte, 16), MinFrameSize-1); err != ErrUnexpectedFormat {
		t.Fatalf("want ErrUnexpectedFormat, got %v", err)
	}
}

func TestDecodePacketNoTerminator(t *testing.T) {
	// A body with no NUL anywhere is taken whole.
	body := []byte("truncated")
	frame := make([]byte, 8+len(body))
	binary.LittleEndian.PutUint32(frame[0:4], 7)
	binary.LittleEndian.PutUint32(frame[4:8], uint32(TypeResponse))
	copy(frame[8:], body)
	p, err := DecodePacket(frame, MinFrameSize+len(body))
	if err != nil {
		t.Fatal(err)
	}
	if string(p.Body) != "truncated" {
		t.Fatalf("body = %q", p.Body)
	}
}

func TestDecodePacketEmbeddedNUL(t *testing.T) {
	frame, err := EncodeCommand(9, TypeResponse, "ab")
	if err != nil {
		t.Fatal(err)
	}
	// Overwrite the second byte with a NUL; decode stops there.
	payload := frame[4:]
	payload[9] = 0
	p, err := DecodePacket(payload, int(binary.LittleEndian.Uint32(frame[:4])))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p.Body, []byte("a")) {
		t.Fatalf("body = %q", p.Body)
	}
}
