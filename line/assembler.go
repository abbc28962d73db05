// Package line turns a serial byte stream into complete text lines.
//
// An Assembler has one producer (Feed, called for every received byte) and
// one consumer (Take, called from the main loop). The handoff between them
// is the ready flag: once a line is complete the producer stops appending
// until the consumer has copied the line out.
package line

import "sync/atomic"

// Capacity is the default longest line an Assembler holds, terminator
// excluded.
const Capacity = 128

// Assembler accumulates bytes into a line buffer.
type Assembler struct {
	buf    []byte
	n      int
	ready  atomic.Bool
	anchor byte
	skip   bool

	received  atomic.Uint32
	overflows atomic.Uint32
}

// New returns an assembler that accepts any line up to Capacity bytes.
func New() *Assembler {
	return NewSize(Capacity)
}

// NewSize returns an assembler holding lines up to size bytes. Sizes below
// Capacity are raised to it.
func NewSize(size int) *Assembler {
	if size < Capacity {
		size = Capacity
	}
	return &Assembler{buf: make([]byte, size)}
}

// NewAnchored returns an assembler that ignores input until anchor starts
// a line. GPS channels use '$' to resynchronize after joining mid-sentence.
func NewAnchored(anchor byte) *Assembler {
	a := New()
	a.anchor = anchor
	return a
}

// Cap returns the longest line a holds.
func (a *Assembler) Cap() int {
	return len(a.buf)
}

func isTerminator(b byte) bool {
	return b == '\r' || b == '\n'
}

// Feed appends one received byte.
func (a *Assembler) Feed(b byte) {
	a.received.Add(1)
	if a.ready.Load() {
		// back-pressure: consumer has not taken the last line yet
		return
	}
	if a.skip {
		if isTerminator(b) {
			a.skip = false
		}
		return
	}
	if isTerminator(b) {
		if a.n > 0 {
			a.ready.Store(true)
		}
		return
	}
	if a.n == 0 && a.anchor != 0 && b != a.anchor {
		return
	}
	if a.n >= len(a.buf) {
		// a partial line is corrupt: drop it and the rest of it up to the
		// next terminator, so its tail is never read as a line of its own
		a.n = 0
		a.skip = true
		a.overflows.Add(1)
		return
	}
	a.buf[a.n] = b
	a.n++
}

// Ready reports whether a complete line is waiting.
func (a *Assembler) Ready() bool {
	return a.ready.Load()
}

// Take copies the pending line into dst and clears the buffer so the
// producer can start the next line. It returns false when no line is ready.
// A dst shorter than the line receives a truncated copy.
func (a *Assembler) Take(dst []byte) (int, bool) {
	if !a.ready.Load() {
		return 0, false
	}
	n := copy(dst, a.buf[:a.n])
	a.n = 0
	a.ready.Store(false)
	return n, true
}

// TakeString is Take for callers that want the line as a string.
func (a *Assembler) TakeString() (string, bool) {
	if !a.ready.Load() {
		return "", false
	}
	s := string(a.buf[:a.n])
	a.n = 0
	a.ready.Store(false)
	return s, true
}

// Resync drops the partial line and ignores input through the next
// terminator. It is called when bytes were lost upstream, so the hole is
// never delivered as part of a line. A ready line is kept.
func (a *Assembler) Resync() {
	if a.ready.Load() {
		return
	}
	a.n = 0
	a.skip = true
}

// Reset discards everything, including a ready line.
func (a *Assembler) Reset() {
	a.n = 0
	a.skip = false
	a.ready.Store(false)
}

// Received returns the number of bytes fed so far, dropped ones included.
func (a *Assembler) Received() uint32 {
	return a.received.Load()
}

// Overflows returns how many partial lines were discarded for length.
func (a *Assembler) Overflows() uint32 {
	return a.overflows.Load()
}
