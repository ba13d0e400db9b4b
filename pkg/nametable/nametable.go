// Package nametable maps identifier text to small stable indices.
//
// Indices are handed out in first-occurrence order and never change, so they
// are observable in every later stage (tree dumps, serialized trees).
package nametable

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Capacity      = 1000
	MaxNameLength = 200
)

var (
	ErrCapacityExceeded = errors.New("name table capacity exceeded")
	ErrNameTooLong      = errors.New("name too long")
	ErrBadIndex         = errors.New("name index out of range")
)

// Table is a bounded, append-only list of names. Slots [0, free) are live.
type Table struct {
	names  [Capacity]string
	params [Capacity]int // -1 until a declared parameter count is recorded
	free   int
}

func New() *Table {
	t := &Table{}
	for i := range t.params {
		t.params[i] = -1
	}
	return t
}

// Find returns the index of name, scanning the live slots in order.
func (t *Table) Find(name string) (int, bool) {
	for i := 0; i < t.free; i++ {
		if t.names[i] == name {
			return i, true
		}
	}
	return 0, false
}

// Insert appends name and returns its index. It does not check for an
// existing entry; callers Find first.
func (t *Table) Insert(name string) (int, error) {
	if len(name) > MaxNameLength {
		return 0, fmt.Errorf("%w: %d bytes (max %d)", ErrNameTooLong, len(name), MaxNameLength)
	}
	if t.free >= Capacity {
		return 0, fmt.Errorf("%w: inserting %q into %d slots", ErrCapacityExceeded, name, Capacity)
	}
	idx := t.free
	t.names[idx] = name
	t.free++
	return idx, nil
}

// Intern returns the index of name, inserting it if it is new.
func (t *Table) Intern(name string) (int, error) {
	if idx, ok := t.Find(name); ok {
		return idx, nil
	}
	return t.Insert(name)
}

func (t *Table) SetParameterCount(index, n int) error {
	if index < 0 || index >= t.free {
		return fmt.Errorf("%w: %d (table has %d names)", ErrBadIndex, index, t.free)
	}
	if n < 0 {
		return fmt.Errorf("negative parameter count %d for %q", n, t.names[index])
	}
	t.params[index] = n
	return nil
}

// ParameterCount returns the declared parameter count of the function named
// at index. ok is false when none was recorded.
func (t *Table) ParameterCount(index int) (n int, ok bool) {
	if index < 0 || index >= t.free || t.params[index] < 0 {
		return 0, false
	}
	return t.params[index], true
}

// Name returns the text stored at index, or "" for a dead slot.
func (t *Table) Name(index int) string {
	if index < 0 || index >= t.free {
		return ""
	}
	return t.names[index]
}

// Len returns the number of live slots.
func (t *Table) Len() int { return t.free }

// CopyFrom replaces t's contents with a deep copy of src.
func (t *Table) CopyFrom(src *Table) {
	t.names = src.names
	t.params = src.params
	t.free = src.free
}

// Copy returns an independent duplicate of t.
func (t *Table) Copy() *Table {
	dst := New()
	dst.CopyFrom(t)
	return dst
}

// String returns a dump of the live slots in index order.
func (t *Table) String() string {
	var sb strings.Builder
	if t.free == 0 {
		sb.WriteString("Names: (empty)\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Names (%d/%d):\n", t.free, Capacity)
	for i := 0; i < t.free; i++ {
		if n, ok := t.ParameterCount(i); ok {
			fmt.Fprintf(&sb, "  %4d  %-20s  params: %d\n", i, t.names[i], n)
		} else {
			fmt.Fprintf(&sb, "  %4d  %s\n", i, t.names[i])
		}
	}
	return sb.String()
}
