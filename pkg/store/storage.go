package store

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")
)

// Storage is the interface for the underlying key-value store
type Storage interface {
	// Begin starts a new transaction
	Begin(writable bool) (Transaction, error)

	// Close closes the storage
	Close() error
}

// Transaction represents a database transaction with snapshot isolation.
// A writable transaction sees its own uncommitted writes.
type Transaction interface {
	// Get retrieves a value by key
	Get(table Table, key []byte) ([]byte, error)

	// Set stores a key-value pair
	Set(table Table, key, value []byte) error

	// Commit commits the transaction
	Commit() error

	// Rollback discards the transaction
	Rollback() error
}

// Table represents a logical namespace in the storage
type Table byte

const (
	// Entities discovered while collecting: hash -> term
	TableEntities Table = iota

	// Predicates of collected triples: hash -> term
	TablePredicates

	// First frontier table; hop n uses TableFrontier + n
	TableFrontier
)

// MaxFrontierHop is the highest hop that still has a table of its own
const MaxFrontierHop = 255 - int(TableFrontier)

// FrontierTable returns the table holding the entities discovered at the given hop
func FrontierTable(hop int) Table {
	return TableFrontier + Table(hop)
}

func (t Table) String() string {
	switch {
	case t == TableEntities:
		return "entities"
	case t == TablePredicates:
		return "predicates"
	case t >= TableFrontier:
		return "frontier"
	default:
		return "unknown"
	}
}

// PrefixKey adds a table prefix to a key
func PrefixKey(table Table, key []byte) []byte {
	result := make([]byte, 1+len(key))
	result[0] = byte(table)
	copy(result[1:], key)
	return result
}
