// Command libcmdfifo builds the command queue as a C library.
//
//	go build -buildmode=c-shared -o libcmdfifo.so ./cmd/libcmdfifo
//	go build -buildmode=c-archive -o libcmdfifo.a ./cmd/libcmdfifo
//
// The exported signatures must match include/cmdfifo.h.
package main

/*
#include <stddef.h>
#include <stdint.h>

typedef struct {
	int32_t command_id;
	uint8_t data[64];
} CommandMessage;
*/
import "C"

import (
	"unsafe"

	"github.com/danmuck/cmdfifo/internal/abi"
	"github.com/danmuck/cmdfifo/internal/fifo"
	"github.com/danmuck/cmdfifo/internal/logging"
)

// C and Go layouts must agree byte for byte.
var _ [1]struct{} = [unsafe.Sizeof(C.CommandMessage{}) - fifo.MessageSize + 1]struct{}{}

func init() {
	logging.ConfigureRuntime()
}

func main() {}

//export init_fifo
func init_fifo() C.uintptr_t {
	return C.uintptr_t(abi.Init(fifo.Default()))
}

//export simulate_interrupt
func simulate_interrupt(handle C.uintptr_t, commandID C.int32_t, data *C.uint8_t, dataLen C.size_t) C.int32_t {
	return C.int32_t(abi.Write(fifo.Default(), uintptr(handle), int32(commandID), payloadView(data, dataLen)))
}

//export read_fifo
func read_fifo(handle C.uintptr_t) C.CommandMessage {
	m := abi.Read(fifo.Default(), uintptr(handle))
	var out C.CommandMessage
	out.command_id = C.int32_t(m.CommandID)
	for i, b := range m.Payload {
		out.data[i] = C.uint8_t(b)
	}
	return out
}

//export destroy_fifo
func destroy_fifo(handle C.uintptr_t) {
	abi.Destroy(fifo.Default(), uintptr(handle))
}

//export fifo_abi_probe
func fifo_abi_probe() C.uint32_t {
	return C.uint32_t(abi.ProbeValue)
}

//export fifo_message_size
func fifo_message_size() C.size_t {
	return C.size_t(unsafe.Sizeof(C.CommandMessage{}))
}

// payloadView exposes at most fifo.PayloadSize bytes of the caller's buffer.
// A nil pointer reads as an empty payload.
func payloadView(data *C.uint8_t, n C.size_t) []byte {
	if data == nil || n == 0 {
		return nil
	}
	if n > fifo.PayloadSize {
		n = fifo.PayloadSize
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(data)), int(n))
}
