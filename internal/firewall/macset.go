//go:build linux
// +build linux

package firewall

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/google/nftables"

	"grimm.is/macsync/internal/logging"
	"grimm.is/macsync/internal/mac"
)

var validSetNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func isValidSetName(name string) bool {
	return validSetNameRegex.MatchString(name)
}

// MACSetManager maintains link-layer address sets in an nftables table
// using the native netlink library.
type MACSetManager struct {
	conn      NFTablesConn
	tableName string
	table     *nftables.Table
	sets      map[string]*nftables.Set // Cache of set references
	mu        sync.RWMutex
	logger    *logging.Logger
}

// NewMACSetManager creates a manager for sets in the named inet table.
func NewMACSetManager(conn NFTablesConn, tableName string, logger *logging.Logger) *MACSetManager {
	if logger == nil {
		logger = logging.Default()
	}
	return &MACSetManager{
		conn:      conn,
		tableName: tableName,
		sets:      make(map[string]*nftables.Set),
		logger:    logger.WithComponent("nft"),
	}
}

// getTable returns the table reference, finding it if needed.
func (m *MACSetManager) getTable() (*nftables.Table, error) {
	if m.table != nil {
		return m.table, nil
	}

	tables, err := m.conn.ListTables()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	for _, t := range tables {
		if t.Name == m.tableName && t.Family == nftables.TableFamilyINet {
			m.table = t
			return t, nil
		}
	}

	return nil, fmt.Errorf("table %s not found", m.tableName)
}

// getSet returns a cached set reference or finds it.
func (m *MACSetManager) getSet(name string) (*nftables.Set, error) {
	m.mu.RLock()
	if s, ok := m.sets[name]; ok {
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	table, err := m.getTable()
	if err != nil {
		return nil, err
	}

	sets, err := m.conn.GetSets(table)
	if err != nil {
		return nil, fmt.Errorf("failed to get sets: %w", err)
	}

	for _, s := range sets {
		if s.Name == name {
			m.mu.Lock()
			m.sets[name] = s
			m.mu.Unlock()
			return s, nil
		}
	}

	return nil, fmt.Errorf("set %s not found in table %s", name, m.tableName)
}

// EnsureSet creates the named ether_addr set if it does not exist.
func (m *MACSetManager) EnsureSet(name string) error {
	if !isValidSetName(name) {
		return fmt.Errorf("invalid set name: %s", name)
	}

	if _, err := m.getSet(name); err == nil {
		return nil
	}

	table, err := m.getTable()
	if err != nil {
		return err
	}

	set := &nftables.Set{
		Name:    name,
		Table:   table,
		KeyType: nftables.TypeEtherAddr,
	}

	if err := m.conn.AddSet(set, nil); err != nil {
		return fmt.Errorf("failed to add set: %w", err)
	}
	if err := m.conn.Flush(); err != nil {
		return fmt.Errorf("failed to commit set creation: %w", err)
	}

	m.mu.Lock()
	m.sets[name] = set
	m.mu.Unlock()

	m.logger.Info("created set", "table", m.tableName, "set", name)
	return nil
}

// ReplaceElements atomically replaces the set's membership. The flush
// and the adds are queued into one netlink batch and committed by a
// single Flush; the kernel applies the batch as one transaction, so
// concurrent readers never observe an empty or partial set. On error
// nothing has been committed and the prior membership stands.
func (m *MACSetManager) ReplaceElements(name string, addrs []mac.Addr) error {
	if !isValidSetName(name) {
		return fmt.Errorf("invalid set name: %s", name)
	}

	set, err := m.getSet(name)
	if err != nil {
		return err
	}

	m.conn.FlushSet(set)

	if len(addrs) > 0 {
		elements := make([]nftables.SetElement, 0, len(addrs))
		for _, a := range addrs {
			elements = append(elements, nftables.SetElement{Key: a.Bytes()})
		}
		if err := m.conn.SetAddElements(set, elements); err != nil {
			return fmt.Errorf("failed to stage elements: %w", err)
		}
	}

	// Atomic commit
	if err := m.conn.Flush(); err != nil {
		return fmt.Errorf("failed to commit set replacement: %w", err)
	}

	m.logger.Debug("replaced set membership", "table", m.tableName, "set", name, "elements", len(addrs))
	return nil
}

// Elements returns the current membership, sorted canonically.
func (m *MACSetManager) Elements(name string) ([]mac.Addr, error) {
	set, err := m.getSet(name)
	if err != nil {
		return nil, err
	}

	elements, err := m.conn.GetSetElements(set)
	if err != nil {
		return nil, fmt.Errorf("failed to get elements: %w", err)
	}

	addrs := make([]mac.Addr, 0, len(elements))
	for _, elem := range elements {
		a, err := mac.FromBytes(elem.Key)
		if err != nil {
			return nil, fmt.Errorf("unexpected element key in set %s: %w", name, err)
		}
		addrs = append(addrs, a)
	}

	sort.Slice(addrs, func(i, j int) bool { return addrs[i].String() < addrs[j].String() })
	return addrs, nil
}

// CheckElement checks if a single address is in the set.
func (m *MACSetManager) CheckElement(name string, addr mac.Addr) (bool, error) {
	addrs, err := m.Elements(name)
	if err != nil {
		return false, err
	}
	for _, a := range addrs {
		if a == addr {
			return true, nil
		}
	}
	return false, nil
}

// BoundSet binds a manager to one set name so callers that operate on a
// single filter set can hold a narrower handle.
type BoundSet struct {
	mgr  *MACSetManager
	name string
}

// NewBoundSet binds mgr to the named set.
func NewBoundSet(mgr *MACSetManager, name string) *BoundSet {
	return &BoundSet{mgr: mgr, name: name}
}

// Replace atomically replaces the bound set's membership.
func (b *BoundSet) Replace(addrs []mac.Addr) error {
	return b.mgr.ReplaceElements(b.name, addrs)
}

// Current returns the bound set's membership.
func (b *BoundSet) Current() ([]mac.Addr, error) {
	return b.mgr.Elements(b.name)
}

// Name returns the bound set name.
func (b *BoundSet) Name() string {
	return b.name
}
