package proto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"testing/iotest"
)

func TestReadFrameWhole(t *testing.T) {
	frame, err := EncodeCommand(7, TypeResponse, "pong")
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, ReadBufSize)
	got, size, err := ReadFrame(bytes.NewReader(frame), buf)
	if err != nil {
		t.Fatal(err)
	}
	p, err := DecodePacket(got, size)
	if err != nil {
		t.Fatal(err)
	}
	if p.RequestID != 7 || string(p.Body) != "pong" {
		t.Fatalf("got %+v", p)
	}
}

func TestReadFrameOneByteAtATime(t *testing.T) {
	// Fragmentation must not matter: a frame delivered one byte per read
	// decodes identically to the same frame delivered whole.
	frame, err := EncodeCommand(99, TypeResponse, "There are 0 of a max of 20 players online:")
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, ReadBufSize)
	got, size, err := ReadFrame(iotest.OneByteReader(bytes.NewReader(frame)), buf)
	if err != nil {
		t.Fatal(err)
	}
	p, err := DecodePacket(got, size)
	if err != nil {
		t.Fatal(err)
	}
	if p.RequestID != 99 || string(p.Body) != "There are 0 of a max of 20 players online:" {
		t.Fatalf("got %+v", p)
	}
}

func TestReadFrameUndersized(t *testing.T) {
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(MinFrameSize-1))
	_, _, err := ReadFrame(bytes.NewReader(prefix[:]), make([]byte, ReadBufSize))
	if !errors.Is(err, ErrUnexpectedFormat) {
		t.Fatalf("want ErrUnexpectedFormat, got %v", err)
	}
}

// bombReader fails the test if anything is read from it.
type bombReader struct{ t *testing.T }

func (b bombReader) Read([]byte) (int, error) {
	b.t.Fatal("body read attempted after oversized size field")
	return 0, io.EOF
}

func TestReadFrameOversized(t *testing.T) {
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(MaxFrameSize+1))
	r := io.MultiReader(bytes.NewReader(prefix[:]), bombReader{t})
	_, _, err := ReadFrame(r, make([]byte, ReadBufSize))
	if !errors.Is(err, ErrResponseTooLong) {
		t.Fatalf("want ErrResponseTooLong, got %v", err)
	}
}

func TestReadFrameClosedBeforePrefix(t *testing.T) {
	_, _, err := ReadFrame(bytes.NewReader([]byte{1, 0}), make([]byte, ReadBufSize))
	if !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("want ErrConnectionClosed, got %v", err)
	}
}

func TestReadFrameClosedMidBody(t *testing.T) {
	frame, err := EncodeCommand(3, TypeResponse, "cut short")
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = ReadFrame(bytes.NewReader(frame[:len(frame)-4]), make([]byte, ReadBufSize))
	if !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("want ErrConnectionClosed, got %v", err)
	}
}
