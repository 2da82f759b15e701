package fifo

import "strconv"

// Handle is the opaque token returned by Init. Its value is the generation
// that issued it; it never addresses memory.
type Handle uint64

// NullHandle is never issued by Init.
const NullHandle Handle = 0

func (h Handle) IsNull() bool {
	return h == NullHandle
}

// Generation returns the init cycle that issued h.
func (h Handle) Generation() uint64 {
	return uint64(h)
}

func (h Handle) String() string {
	if h.IsNull() {
		return "handle.null"
	}
	return "handle." + strconv.FormatUint(uint64(h), 10)
}
