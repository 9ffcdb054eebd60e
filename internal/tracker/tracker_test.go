// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Allocate(t *testing.T) {
	tests := []struct {
		name    string
		lastID  uint16
		pending []uint16
		want    uint16
		wantOK  bool
	}{
		{name: "first allocation", want: 1, wantOK: true},
		{name: "continues after last issued", lastID: 41, want: 42, wantOK: true},
		{name: "skips pending identifiers", lastID: 1, pending: []uint16{2, 3, 5}, want: 4, wantOK: true},
		{name: "wraps around to one", lastID: MaxID, want: 1, wantOK: true},
		{name: "wraps around skipping pending", lastID: MaxID - 1, pending: []uint16{MaxID, 1, 2}, want: 3, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := New[string]()
			tbl.lastID = tt.lastID
			for _, id := range tt.pending {
				tbl.Insert(id, "pending")
			}

			got, ok := tbl.Allocate()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_Allocate_exhaustion(t *testing.T) {
	tbl := New[int]()
	seen := make(map[uint16]bool, MaxID)
	for range MaxID {
		id, ok := tbl.Allocate()
		require.True(t, ok, "allocation failed before the identifier space was exhausted")
		require.NotZero(t, id)
		require.False(t, seen[id], "identifier %d handed out twice while pending", id)
		seen[id] = true
		tbl.Insert(id, int(id))
	}

	id, ok := tbl.Allocate()
	assert.False(t, ok, "expected exhaustion with %d pending entries", tbl.Len())
	assert.Zero(t, id)

	// Freeing any slot makes exactly that slot available again.
	_, removed := tbl.Remove(31337)
	require.True(t, removed)
	id, ok = tbl.Allocate()
	assert.True(t, ok)
	assert.Equal(t, uint16(31337), id)
}

func TestTable_Allocate_neverReturnsPending(t *testing.T) {
	tbl := New[struct{}]()
	for i := 0; i < 3*MaxID; i++ {
		id, ok := tbl.Allocate()
		require.True(t, ok)
		_, pending := tbl.Lookup(id)
		require.False(t, pending, "allocated identifier %d is pending", id)
		tbl.Insert(id, struct{}{})
		// Keep a sliding window of pending entries.
		if i%3 != 0 {
			tbl.Remove(id)
		}
		if tbl.Len() > 1000 {
			tbl.Flush(func(uint16, struct{}) {})
		}
	}
}

func TestTable_Remove(t *testing.T) {
	tbl := New[string]()
	idle := 0
	tbl.OnIdle(func() { idle++ })

	tbl.Insert(1, "one")
	tbl.Insert(2, "two")

	v, ok := tbl.Remove(1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)
	assert.Equal(t, 0, idle, "idle hook fired with entries pending")

	_, ok = tbl.Lookup(1)
	assert.False(t, ok)

	v, ok = tbl.Remove(2)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
	assert.Equal(t, 1, idle, "idle hook did not fire once the table emptied")

	_, ok = tbl.Remove(2)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())
}

func TestTable_Flush(t *testing.T) {
	tbl := New[string]()
	idle := 0
	tbl.OnIdle(func() { idle++ })
	for i, v := range []string{"a", "b", "c", "d", "e"} {
		tbl.Insert(uint16(i+1), v)
	}

	got := map[uint16]string{}
	tbl.Flush(func(id uint16, v string) {
		_, stillPending := tbl.Lookup(id)
		assert.False(t, stillPending, "entry %d still pending during flush", id)
		got[id] = v
	})

	assert.Equal(t, map[uint16]string{1: "a", 2: "b", 3: "c", 4: "d", 5: "e"}, got)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 1, idle)
}

func TestTable_Flush_keepsEntriesInsertedByCallback(t *testing.T) {
	tbl := New[string]()
	tbl.Insert(7, "old")

	tbl.Flush(func(uint16, string) {
		tbl.Insert(8, "new")
	})

	v, ok := tbl.Lookup(8)
	assert.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, tbl.Len())
}
