package uart

import (
	"bytes"
	"strings"
	"sync"
)

// Mem is an in-memory Port. Bytes given to Receive or Inject appear on the
// read side; written bytes are recorded and split into lines so scripted
// peers can answer them.
type Mem struct {
	rx Ring

	mu      sync.Mutex
	tx      bytes.Buffer
	partial []byte
	lines   []string
	hooks   []func(line string)
	rate    uint32
	device  uint32
	closed  bool
	rateLog []uint32
}

// NewMem returns a port at rate.
func NewMem(rate uint32) *Mem {
	return &Mem{rate: rate}
}

// SetDeviceRate makes the port behave like a device fixed at rate: while
// the port is at any other rate, neither direction gets through.
// Zero means the device follows whatever the port is set to.
func (m *Mem) SetDeviceRate(rate uint32) {
	m.mu.Lock()
	m.device = rate
	m.mu.Unlock()
}

func (m *Mem) linked() bool {
	return m.device == 0 || m.device == m.rate
}

// Receive queues b as received bytes. Bytes beyond the ring capacity are
// lost and flagged as an overrun.
func (m *Mem) Receive(b []byte) {
	m.mu.Lock()
	ok := m.linked()
	m.mu.Unlock()
	if !ok {
		return
	}
	for _, c := range b {
		m.rx.Put(c)
	}
}

// Inject is Receive for strings.
func (m *Mem) Inject(s string) {
	m.Receive([]byte(s))
}

func (m *Mem) Read(p []byte) (int, error) {
	return m.rx.Read(p), nil
}

func (m *Mem) Buffered() int {
	return m.rx.Used()
}

func (m *Mem) Overrun() bool {
	return m.rx.Overrun()
}

func (m *Mem) Write(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, ErrClosed
	}
	m.tx.Write(p)
	var done []string
	for _, b := range p {
		if b == '\r' || b == '\n' {
			if len(m.partial) > 0 {
				done = append(done, string(m.partial))
				m.partial = m.partial[:0]
			}
			continue
		}
		m.partial = append(m.partial, b)
	}
	m.lines = append(m.lines, done...)
	hooks := m.hooks
	linked := m.linked()
	m.mu.Unlock()

	if linked {
		for _, l := range done {
			for _, h := range hooks {
				h(l)
			}
		}
	}
	return len(p), nil
}

func (m *Mem) SetBaudRate(br uint32) error {
	m.mu.Lock()
	m.rate = br
	m.rateLog = append(m.rateLog, br)
	m.mu.Unlock()
	return nil
}

// Rate returns the current baud rate.
func (m *Mem) Rate() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

// Rates returns every rate the port was switched to, in order.
func (m *Mem) Rates() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint32(nil), m.rateLog...)
}

// OnLine registers fn to be called for every complete line written.
func (m *Mem) OnLine(fn func(line string)) {
	m.mu.Lock()
	m.hooks = append(m.hooks, fn)
	m.mu.Unlock()
}

// Respond answers every written line starting with prefix by injecting reply.
func (m *Mem) Respond(prefix, reply string) {
	m.OnLine(func(l string) {
		if strings.HasPrefix(l, prefix) {
			m.Inject(reply)
		}
	})
}

// Written returns everything written so far.
func (m *Mem) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tx.String()
}

// Lines returns the complete lines written so far.
func (m *Mem) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// ClearWritten forgets recorded output.
func (m *Mem) ClearWritten() {
	m.mu.Lock()
	m.tx.Reset()
	m.lines = nil
	m.partial = m.partial[:0]
	m.mu.Unlock()
}

// Close makes further writes fail.
func (m *Mem) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
