//go:build linux
// +build linux

package firewall

import (
	"sync"

	"github.com/google/nftables"
	"github.com/stretchr/testify/mock"
)

// MockNFTablesConn is a mock implementation of NFTablesConn for testing.
// Beyond testify expectations it models netlink batching: FlushSet and
// SetAddElements are staged, and only a successful Flush applies them to
// the visible (committed) state. That lets tests assert the atomicity
// properties the real kernel provides.
type MockNFTablesConn struct {
	mock.Mock
	mu sync.Mutex

	// In-memory state for tracking operations
	tables    map[string]*nftables.Table
	sets      map[string]*nftables.Set
	committed map[string][]nftables.SetElement
	staged    []func()
	commits   int
}

// NewMockNFTablesConn creates a new mock nftables connection.
func NewMockNFTablesConn() *MockNFTablesConn {
	return &MockNFTablesConn{
		tables:    make(map[string]*nftables.Table),
		sets:      make(map[string]*nftables.Set),
		committed: make(map[string][]nftables.SetElement),
	}
}

// AddTestTable registers a table in the mock's state.
func (m *MockNFTablesConn) AddTestTable(t *nftables.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.Name] = t
}

// AddTestSet registers a set with committed elements in the mock's state.
func (m *MockNFTablesConn) AddTestSet(s *nftables.Set, elements []nftables.SetElement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[s.Name] = s
	m.committed[s.Name] = append([]nftables.SetElement(nil), elements...)
}

// CommittedElements returns the visible membership of a set.
func (m *MockNFTablesConn) CommittedElements(name string) []nftables.SetElement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]nftables.SetElement(nil), m.committed[name]...)
}

// Commits returns how many batches were committed.
func (m *MockNFTablesConn) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

func (m *MockNFTablesConn) ListTables() ([]*nftables.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called()
	if args.Get(0) != nil {
		return args.Get(0).([]*nftables.Table), args.Error(1)
	}
	tables := make([]*nftables.Table, 0, len(m.tables))
	for _, t := range m.tables {
		tables = append(tables, t)
	}
	return tables, args.Error(1)
}

func (m *MockNFTablesConn) AddSet(s *nftables.Set, vals []nftables.SetElement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(s, vals)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	m.staged = append(m.staged, func() {
		m.sets[s.Name] = s
		m.committed[s.Name] = append([]nftables.SetElement(nil), vals...)
	})
	return nil
}

func (m *MockNFTablesConn) GetSets(t *nftables.Table) ([]*nftables.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(t)
	if args.Get(0) != nil {
		return args.Get(0).([]*nftables.Set), args.Error(1)
	}
	sets := make([]*nftables.Set, 0, len(m.sets))
	for _, s := range m.sets {
		sets = append(sets, s)
	}
	return sets, args.Error(1)
}

func (m *MockNFTablesConn) GetSetElements(s *nftables.Set) ([]nftables.SetElement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(s)
	if args.Get(0) != nil {
		return args.Get(0).([]nftables.SetElement), args.Error(1)
	}
	return append([]nftables.SetElement(nil), m.committed[s.Name]...), args.Error(1)
}

func (m *MockNFTablesConn) SetAddElements(s *nftables.Set, vals []nftables.SetElement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(s, vals)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	staged := append([]nftables.SetElement(nil), vals...)
	m.staged = append(m.staged, func() {
		m.committed[s.Name] = append(m.committed[s.Name], staged...)
	})
	return nil
}

func (m *MockNFTablesConn) FlushSet(s *nftables.Set) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Called(s)
	m.staged = append(m.staged, func() {
		m.committed[s.Name] = nil
	})
}

// Flush commits the staged batch. On error the batch is discarded, as
// the kernel rejects a netlink batch wholesale.
func (m *MockNFTablesConn) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called()
	if args.Error(0) != nil {
		m.staged = nil
		return args.Error(0)
	}
	for _, apply := range m.staged {
		apply()
	}
	m.staged = nil
	m.commits++
	return nil
}
