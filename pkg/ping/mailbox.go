// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import "sync"

// mailbox is an unbounded queue of functions run by a session's loop.
// Posting never blocks, so it is safe from within the loop itself.
type mailbox struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	// signal wakes the loop. It holds at most one pending wake-up.
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// post queues fn. It returns false if the mailbox is closed.
func (m *mailbox) post(fn func()) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
	m.wake()
	return true
}

// close rejects further posts. Functions already queued are still handed out.
func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wake()
}

func (m *mailbox) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// wait blocks until functions are queued and returns them in posting order.
// It returns false once the mailbox is closed and drained.
func (m *mailbox) wait() ([]func(), bool) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			q := m.queue
			m.queue = nil
			m.mu.Unlock()
			return q, true
		}
		if m.closed {
			m.mu.Unlock()
			return nil, false
		}
		m.mu.Unlock()
		<-m.signal
	}
}
