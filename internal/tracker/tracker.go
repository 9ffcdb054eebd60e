// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package tracker provides the table of in-flight requests of a session,
// keyed by their 16-bit identifier.
//
// A [Table] is not safe for concurrent use. It is owned by the goroutine
// that runs the session it belongs to.
package tracker

import "math"

// MaxID is the largest identifier a [Table] hands out.
// Identifiers start at 1, 0 is never allocated.
const MaxID = math.MaxUint16

// Table tracks pending requests by identifier and allocates identifiers that
// are not in use.
type Table[T any] struct {
	entries map[uint16]T
	// lastID is the identifier handed out most recently.
	lastID uint16
	// onIdle is called whenever a removal empties the table.
	onIdle func()
}

// New returns an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{entries: make(map[uint16]T)}
}

// OnIdle registers fn to be called every time a removal leaves the table
// without pending entries.
func (t *Table[T]) OnIdle(fn func()) {
	t.onIdle = fn
}

// Allocate returns the next identifier not present in the table, scanning
// circularly from the one handed out last. It returns false when every
// identifier is in use.
func (t *Table[T]) Allocate() (uint16, bool) {
	if len(t.entries) >= MaxID {
		return 0, false
	}

	id := t.lastID
	for range MaxID {
		id = next(id)
		if _, used := t.entries[id]; !used {
			t.lastID = id
			return id, true
		}
	}
	return 0, false
}

// next returns the identifier following id, wrapping from [MaxID] to 1.
func next(id uint16) uint16 {
	if id >= MaxID {
		return 1
	}
	return id + 1
}

// Insert stores v under id, replacing any entry already stored under it.
func (t *Table[T]) Insert(id uint16, v T) {
	t.entries[id] = v
}

// Lookup returns the entry stored under id.
func (t *Table[T]) Lookup(id uint16) (T, bool) {
	v, ok := t.entries[id]
	return v, ok
}

// Remove deletes and returns the entry stored under id.
// If the table is empty afterwards the idle hook fires.
func (t *Table[T]) Remove(id uint16) (T, bool) {
	v, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	if len(t.entries) == 0 && t.onIdle != nil {
		t.onIdle()
	}
	return v, ok
}

// Len returns the number of pending entries.
func (t *Table[T]) Len() int {
	return len(t.entries)
}

// Flush removes every entry and calls fn once for each of them.
// fn may insert new entries; those are kept.
func (t *Table[T]) Flush(fn func(id uint16, v T)) {
	flushed := t.entries
	t.entries = make(map[uint16]T)
	for id, v := range flushed {
		fn(id, v)
	}
	if len(t.entries) == 0 && t.onIdle != nil {
		t.onIdle()
	}
}
