package waiter

import (
	"bytes"
	"runtime"
	"strconv"
)

var goroutinePrefix = []byte("goroutine ")

// CurrentGoID returns the runtime ID of the calling goroutine.
//
// The ID is parsed from the header line of runtime.Stack
// ("goroutine 123 [running]:"); it returns 0 if the header cannot be parsed.
func CurrentGoID() uint64 {
	var buf [64]byte

	b := buf[:runtime.Stack(buf[:], false)]

	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}

	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}

	return id
}
