package store

import (
	"errors"
	"fmt"
)

// ErrSetClosed is returned by a stored set that was closed or failed to write
var ErrSetClosed = errors.New("term set is closed")

// TermSet is a growing set of terms compared by exact string equality
type TermSet interface {
	// Add inserts a term and reports whether it was not yet present
	Add(term string) (bool, error)

	// Contains reports whether the term is in the set
	Contains(term string) (bool, error)

	// Len returns the number of distinct terms
	Len() int

	// Close releases the set; it must not be used afterwards
	Close() error
}

// SetFactory creates an empty term set for the given table
type SetFactory func(table Table) (TermSet, error)

// Keyer maps a term to a fixed-size storage key
type Keyer interface {
	TermKey(term string) []byte
}

// MemoryTermSet keeps terms in a Go map
type MemoryTermSet struct {
	terms map[string]struct{}
}

func NewMemoryTermSet() *MemoryTermSet {
	return &MemoryTermSet{terms: make(map[string]struct{})}
}

// MemorySets returns a factory creating in-memory sets
func MemorySets() SetFactory {
	return func(Table) (TermSet, error) {
		return NewMemoryTermSet(), nil
	}
}

func (s *MemoryTermSet) Add(term string) (bool, error) {
	if _, ok := s.terms[term]; ok {
		return false, nil
	}
	s.terms[term] = struct{}{}
	return true, nil
}

func (s *MemoryTermSet) Contains(term string) (bool, error) {
	_, ok := s.terms[term]
	return ok, nil
}

func (s *MemoryTermSet) Len() int {
	return len(s.terms)
}

func (s *MemoryTermSet) Close() error {
	s.terms = nil
	return nil
}

// DefaultBatchSize is the number of inserts grouped into one write transaction
const DefaultBatchSize = 10000

// StoredTermSet keeps terms in a Storage table, keyed by the hash of the term.
// Writes are batched; the open transaction serves lookups so pending terms are visible.
// A failed write rolls back the open batch and leaves the set unusable.
type StoredTermSet struct {
	storage   Storage
	table     Table
	keyer     Keyer
	batchSize int

	txn     Transaction
	pending int
	count   int
}

// NewStoredTermSet creates a set in the given table. The table is expected to be empty.
func NewStoredTermSet(storage Storage, table Table, keyer Keyer, batchSize int) (*StoredTermSet, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	txn, err := storage.Begin(true)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &StoredTermSet{
		storage:   storage,
		table:     table,
		keyer:     keyer,
		batchSize: batchSize,
		txn:       txn,
	}, nil
}

// StoredSets returns a factory creating sets backed by storage
func StoredSets(storage Storage, keyer Keyer, batchSize int) SetFactory {
	return func(table Table) (TermSet, error) {
		return NewStoredTermSet(storage, table, keyer, batchSize)
	}
}

func (s *StoredTermSet) Add(term string) (bool, error) {
	key := s.keyer.TermKey(term)
	found, err := s.lookup(key)
	if err != nil || found {
		return false, err
	}

	if err := s.txn.Set(s.table, key, []byte(term)); err != nil {
		return false, s.abort(fmt.Errorf("failed to store %s term: %w", s.table, err))
	}
	s.count++
	s.pending++

	if s.pending >= s.batchSize {
		if err := s.flush(); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (s *StoredTermSet) Contains(term string) (bool, error) {
	return s.lookup(s.keyer.TermKey(term))
}

func (s *StoredTermSet) Len() int {
	return s.count
}

// Close commits pending terms
func (s *StoredTermSet) Close() error {
	if s.txn == nil {
		return nil
	}
	if err := s.txn.Commit(); err != nil {
		return s.abort(fmt.Errorf("failed to commit %s terms: %w", s.table, err))
	}
	s.txn = nil
	return nil
}

func (s *StoredTermSet) lookup(key []byte) (bool, error) {
	if s.txn == nil {
		return false, ErrSetClosed
	}
	_, err := s.txn.Get(s.table, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up %s term: %w", s.table, err)
	}
	return true, nil
}

func (s *StoredTermSet) flush() error {
	if err := s.txn.Commit(); err != nil {
		return s.abort(fmt.Errorf("failed to commit %s terms: %w", s.table, err))
	}
	s.txn = nil
	txn, err := s.storage.Begin(true)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.txn = txn
	s.pending = 0
	return nil
}

// abort discards the open transaction after err
func (s *StoredTermSet) abort(err error) error {
	if rbErr := s.txn.Rollback(); rbErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to roll back %s terms: %w", s.table, rbErr))
	}
	s.txn = nil
	return err
}
