package hub

import "sync"

// frame is one encoded state message.
type frame struct {
	version uint64
	data    []byte
}

// mailbox holds at most one undelivered frame per client. A newer frame
// replaces an older pending one, and frames not newer than the last delivered
// version are dropped, so a client only ever moves forward.
type mailbox struct {
	mu        sync.Mutex
	pending   *frame
	delivered uint64
	started   bool
	wake      chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

func (m *mailbox) offer(f *frame) {
	m.mu.Lock()
	if m.pending == nil || f.version > m.pending.version {
		m.pending = f
	}
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// take returns the pending frame if it advances the client, marking it delivered.
func (m *mailbox) take() (*frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := m.pending
	m.pending = nil
	if f == nil {
		return nil, false
	}
	if m.started && f.version <= m.delivered {
		return nil, false
	}
	m.started = true
	m.delivered = f.version
	return f, true
}
