package uart

import "sync/atomic"

// ringSize must be a power of two.
const ringSize = 512

// Ring is a single-producer single-consumer byte queue. The producer is the
// receive path (an interrupt handler or a reader goroutine), the consumer is
// the main loop. When full, new bytes are refused and the overrun flag is
// raised so the consumer can resynchronize its framing.
type Ring struct {
	buf     [ringSize]byte
	head    atomic.Uint32
	tail    atomic.Uint32
	overrun atomic.Bool
}

// Size returns the capacity in bytes.
func (r *Ring) Size() int {
	return ringSize
}

// Used returns how many bytes are queued.
func (r *Ring) Used() int {
	return int(r.head.Load() - r.tail.Load())
}

// Put queues b. It returns false and flags an overrun when the ring is full.
func (r *Ring) Put(b byte) bool {
	h := r.head.Load()
	if h-r.tail.Load() == ringSize {
		r.overrun.Store(true)
		return false
	}
	r.buf[h%ringSize] = b
	r.head.Store(h + 1)
	return true
}

// Get dequeues one byte.
func (r *Ring) Get() (byte, bool) {
	t := r.tail.Load()
	if r.head.Load() == t {
		return 0, false
	}
	b := r.buf[t%ringSize]
	r.tail.Store(t + 1)
	return b, true
}

// Read dequeues up to len(p) bytes.
func (r *Ring) Read(p []byte) int {
	n := 0
	for n < len(p) {
		b, ok := r.Get()
		if !ok {
			break
		}
		p[n] = b
		n++
	}
	return n
}

// Clear drops everything queued. Only the consumer may call it.
func (r *Ring) Clear() {
	r.tail.Store(r.head.Load())
	r.overrun.Store(false)
}

// Overrun reports whether bytes were refused since the last call, and
// clears the flag.
func (r *Ring) Overrun() bool {
	return r.overrun.Swap(false)
}
