//go:build linux
// +build linux

package firewall

import (
	"github.com/google/nftables"
)

// NFTablesConn abstracts the nftables.Conn operations used for set
// maintenance, so tests can substitute a fake connection.
type NFTablesConn interface {
	// Table operations
	ListTables() ([]*nftables.Table, error)

	// Set operations
	AddSet(s *nftables.Set, vals []nftables.SetElement) error
	GetSets(t *nftables.Table) ([]*nftables.Set, error)
	GetSetElements(s *nftables.Set) ([]nftables.SetElement, error)
	SetAddElements(s *nftables.Set, vals []nftables.SetElement) error
	FlushSet(s *nftables.Set)

	// Flush commits all queued operations as one netlink batch. The
	// kernel applies the batch transactionally.
	Flush() error
}

// RealNFTablesConn wraps the actual nftables.Conn.
type RealNFTablesConn struct {
	conn *nftables.Conn
}

// NewRealNFTablesConn creates a new RealNFTablesConn wrapping an nftables.Conn.
func NewRealNFTablesConn(conn *nftables.Conn) *RealNFTablesConn {
	return &RealNFTablesConn{conn: conn}
}

func (r *RealNFTablesConn) ListTables() ([]*nftables.Table, error) {
	return r.conn.ListTables()
}

func (r *RealNFTablesConn) AddSet(s *nftables.Set, vals []nftables.SetElement) error {
	return r.conn.AddSet(s, vals)
}

func (r *RealNFTablesConn) GetSets(t *nftables.Table) ([]*nftables.Set, error) {
	return r.conn.GetSets(t)
}

func (r *RealNFTablesConn) GetSetElements(s *nftables.Set) ([]nftables.SetElement, error) {
	return r.conn.GetSetElements(s)
}

func (r *RealNFTablesConn) SetAddElements(s *nftables.Set, vals []nftables.SetElement) error {
	return r.conn.SetAddElements(s, vals)
}

func (r *RealNFTablesConn) FlushSet(s *nftables.Set) {
	r.conn.FlushSet(s)
}

func (r *RealNFTablesConn) Flush() error {
	return r.conn.Flush()
}
