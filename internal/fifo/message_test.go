package fifo

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeMessageLayout(t *testing.T) {
	m := NewMessage(-2, []byte{0xAA, 0xBB})
	m.CommandID = 0x01020304
	buf := EncodeMessage(m)
	if len(buf) != MessageSize || MessageSize != 68 {
		t.Fatalf("unexpected size %d", len(buf))
	}
	if !bytes.Equal(buf[0:4], []byte{0x04, 0x03, 0x02, 0x01}) {
		t.Fatalf("command id not little-endian: %x", buf[0:4])
	}
	if buf[4] != 0xAA || buf[5] != 0xBB || buf[6] != 0 {
		t.Fatalf("payload misplaced: %x", buf[4:8])
	}
}

func TestDecodeMessage(t *testing.T) {
	in := NewMessage(CommandEmpty, []byte("payload"))
	out, err := DecodeMessage(AppendMessage(nil, in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("mismatch: %+v != %+v", out, in)
	}
	if !out.IsSentinel() {
		t.Fatalf("expected sentinel")
	}

	if _, err := DecodeMessage(make([]byte, MessageSize-1)); !errors.Is(err, ErrInvalidMessageLength) {
		t.Fatalf("expected ErrInvalidMessageLength, got %v", err)
	}
	if _, err := DecodeMessage(make([]byte, MessageSize+1)); !errors.Is(err, ErrInvalidMessageLength) {
		t.Fatalf("expected ErrInvalidMessageLength, got %v", err)
	}
}

func TestBoundedCopy(t *testing.T) {
	dst := make([]byte, 4)
	if n := BoundedCopy(dst, []byte{1, 2, 3, 4, 5, 6}); n != 4 {
		t.Fatalf("copied %d", n)
	}
	if !bytes.Equal(dst, []byte{1, 2, 3, 4}) {
		t.Fatalf("dst=%v", dst)
	}
	if n := BoundedCopy(dst, []byte{9}); n != 1 || dst[0] != 9 || dst[1] != 2 {
		t.Fatalf("short copy n=%d dst=%v", n, dst)
	}
	if n := BoundedCopy(dst, nil); n != 0 {
		t.Fatalf("nil copy n=%d", n)
	}
}

func TestSentinelMessageZeroPayload(t *testing.T) {
	m := SentinelMessage(CommandInvalid)
	if m.CommandID != CommandInvalid || m.Payload != [PayloadSize]byte{} {
		t.Fatalf("unexpected sentinel: %+v", m)
	}
	if NewMessage(0, nil).IsSentinel() {
		t.Fatalf("command id 0 is a real command")
	}
}
