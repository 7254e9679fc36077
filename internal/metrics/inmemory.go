package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AuthOperations         map[string]uint64 // key: op + ":" + status
	MenuFetches            map[string]uint64
	MenuItems              int
	CatalogRequests        uint64
	CatalogRequestErrors   uint64
	CatalogDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{snap: Snapshot{
		AuthOperations: make(map[string]uint64),
		MenuFetches:    make(map[string]uint64),
	}}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.snap
	s.AuthOperations = make(map[string]uint64, len(m.snap.AuthOperations))
	for k, v := range m.snap.AuthOperations {
		s.AuthOperations[k] = v
	}
	s.MenuFetches = make(map[string]uint64, len(m.snap.MenuFetches))
	for k, v := range m.snap.MenuFetches {
		s.MenuFetches[k] = v
	}
	return s
}

// IncAuthOperation counts a session operation outcome.
func (m *InMemoryRecorder) IncAuthOperation(op, status string) {
	m.mu.Lock()
	m.snap.AuthOperations[op+":"+status]++
	m.mu.Unlock()
}

// IncMenuFetch counts a menu fetch by source.
func (m *InMemoryRecorder) IncMenuFetch(source string) {
	m.mu.Lock()
	m.snap.MenuFetches[source]++
	m.mu.Unlock()
}

// SetMenuItems records the current menu size.
func (m *InMemoryRecorder) SetMenuItems(n int) {
	m.mu.Lock()
	m.snap.MenuItems = n
	m.mu.Unlock()
}

// ObserveCatalogRequest records one catalog request.
func (m *InMemoryRecorder) ObserveCatalogRequest(_ string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.CatalogRequests++
	m.snap.CatalogDurationTotalNs += duration.Nanoseconds()
	if err != nil {
		m.snap.CatalogRequestErrors++
	}
}
