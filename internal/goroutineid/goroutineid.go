// Package goroutineid reports the numeric id of the calling goroutine.
//
// The UI loop records its own id once at startup so that callers can tell
// whether they are already running on it without a round trip.
package goroutineid

import (
	"runtime"
	"sync"
)

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 64)
		return &b
	},
}

// Get returns the id of the calling goroutine, or 0 if it cannot be parsed.
func Get() int64 {
	bp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bp)
	n := runtime.Stack(*bp, false)
	return parse((*bp)[:n])
}

// parse reads the id out of a "goroutine N [status]:" stack header
// without allocating.
func parse(stack []byte) int64 {
	const prefix = "goroutine "
	if len(stack) <= len(prefix) || string(stack[:len(prefix)]) != prefix {
		return 0
	}
	var id int64
	digits := 0
	for _, c := range stack[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
		digits++
	}
	if digits == 0 {
		return 0
	}
	return id
}
