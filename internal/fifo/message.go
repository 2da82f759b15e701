package fifo

import (
	"encoding/binary"
	"fmt"
)

const (
	PayloadSize = 64
	MessageSize = 4 + PayloadSize
)

// Sentinel command ids returned by read paths in place of a real message.
// Real command ids are never negative.
const (
	CommandEmpty   int32 = -1
	CommandInvalid int32 = -2
)

// Message is one queued command. It holds no pointers and copies by value.
type Message struct {
	CommandID int32
	Payload   [PayloadSize]byte
}

// NewMessage builds a message, copying at most PayloadSize bytes of data.
// Excess bytes are dropped.
func NewMessage(commandID int32, data []byte) Message {
	m := Message{CommandID: commandID}
	BoundedCopy(m.Payload[:], data)
	return m
}

// SentinelMessage returns a zero-payload message tagged with id.
func SentinelMessage(id int32) Message {
	return Message{CommandID: id}
}

// IsSentinel reports whether m carries a reserved negative command id.
func (m Message) IsSentinel() bool {
	return m.CommandID < 0
}

// BoundedCopy copies min(len(src), len(dst)) bytes and returns the count.
func BoundedCopy(dst, src []byte) int {
	n := len(src)
	if n > len(dst) {
		n = len(dst)
	}
	return copy(dst[:n], src[:n])
}

// EncodeMessage returns the 68-byte boundary layout of m: a little-endian
// int32 command id followed by the payload.
func EncodeMessage(m Message) [MessageSize]byte {
	var buf [MessageSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.CommandID))
	copy(buf[4:], m.Payload[:])
	return buf
}

// AppendMessage appends the boundary layout of m to dst.
func AppendMessage(dst []byte, m Message) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(m.CommandID))
	return append(dst, m.Payload[:]...)
}

func DecodeMessage(b []byte) (Message, error) {
	if len(b) != MessageSize {
		return Message{}, fmt.Errorf("%w: %d", ErrInvalidMessageLength, len(b))
	}
	var m Message
	m.CommandID = int32(binary.LittleEndian.Uint32(b[0:4]))
	copy(m.Payload[:], b[4:])
	return m, nil
}
