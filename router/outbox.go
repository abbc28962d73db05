package router

// Outbox queues payloads produced while the radio is busy, typically from
// inside an inbound callback that runs during a pending send.
type Outbox struct {
	q       []string
	limit   int
	dropped uint32
}

// NewOutbox returns an outbox holding at most limit payloads.
func NewOutbox(limit int) *Outbox {
	return &Outbox{limit: limit}
}

// Push queues p. When full the oldest payload is dropped.
func (o *Outbox) Push(p string) {
	if len(o.q) >= o.limit {
		o.q = o.q[1:]
		o.dropped++
	}
	o.q = append(o.q, p)
}

// Pop removes the oldest payload.
func (o *Outbox) Pop() (string, bool) {
	if len(o.q) == 0 {
		return "", false
	}
	p := o.q[0]
	o.q = o.q[1:]
	return p, true
}

func (o *Outbox) Len() int {
	return len(o.q)
}

// Dropped counts payloads lost to overflow.
func (o *Outbox) Dropped() uint32 {
	return o.dropped
}
