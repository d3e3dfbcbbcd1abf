package identity

import (
	"fmt"
	"strconv"
	"sync"
)

// StringSuccessor computes the next id in sequence given the previous one.
type StringSuccessor func(prev string) string

// DefaultStringSuccessor treats the id as a decimal integer and increments
// it, yielding the default "1", "2", "3", ... sequence.
func DefaultStringSuccessor(prev string) string {
	n, err := strconv.ParseInt(prev, 10, 64)
	if err != nil {
		return "1"
	}
	return strconv.FormatInt(n+1, 10)
}

// StringManager allocates string ids in a deterministic sequence.
type StringManager struct {
	mu        sync.Mutex
	current   string
	successor StringSuccessor
	used      map[string]bool
}

// StringManagerOption configures a StringManager at construction time.
type StringManagerOption func(*StringManager)

// WithStringSuccessor overrides the default "1", "2", ... successor
// function.
func WithStringSuccessor(fn StringSuccessor) StringManagerOption {
	return func(m *StringManager) { m.successor = fn }
}

// NewStringManager creates a string identity manager.
func NewStringManager(opts ...StringManagerOption) *StringManager {
	m := &StringManager{
		current:   "0",
		successor: DefaultStringSuccessor,
		used:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Next returns the next unused id in sequence and records it as used.
func (m *StringManager) Next() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		m.current = m.successor(m.current)
		if !m.used[m.current] {
			m.used[m.current] = true
			return m.current
		}
	}
}

// Set records an externally supplied id so Next will skip it.
func (m *StringManager) Set(id any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used[fmt.Sprint(id)] = true
}

// Has reports whether id has already been allocated or recorded.
func (m *StringManager) Has(id any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used[fmt.Sprint(id)]
}

// Reset restores the manager to its initial, empty state.
func (m *StringManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = "0"
	m.used = make(map[string]bool)
}
