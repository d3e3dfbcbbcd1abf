package identity

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDManager allocates externally-sortable, collision-resistant string ids
// using github.com/oklog/ulid. Collections that want stable natural
// ordering by creation time without a monotonic integer counter (e.g. when
// ids cross into side-loaded payloads that another system also sorts by
// id) opt into this manager instead of StringManager.
type ULIDManager struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	used    map[string]bool
}

// NewULIDManager creates a ULID-backed identity manager.
func NewULIDManager() *ULIDManager {
	source := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &ULIDManager{entropy: ulid.Monotonic(source, 0), used: make(map[string]bool)}
}

// Next mints a fresh ULID and records it as used.
func (m *ULIDManager) Next() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		id := ulid.MustNew(ulid.Timestamp(time.Now()), m.entropy).String()
		if !m.used[id] {
			m.used[id] = true
			return id
		}
	}
}

// Set records an externally supplied id so Next will skip it.
func (m *ULIDManager) Set(id any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used[fmt.Sprint(id)] = true
}

// Has reports whether id has already been allocated or recorded.
func (m *ULIDManager) Has(id any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used[fmt.Sprint(id)]
}

// Reset restores the manager to its initial, empty state.
func (m *ULIDManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used = make(map[string]bool)
}
