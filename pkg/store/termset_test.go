package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStorage is a Storage whose transactions buffer writes until commit
type mapStorage struct {
	data      map[string][]byte
	commits   int
	rollbacks int

	// failSet and failCommit make the next transactions fail
	failSet    error
	failCommit error
}

func newMapStorage() *mapStorage {
	return &mapStorage{data: make(map[string][]byte)}
}

func (s *mapStorage) Begin(writable bool) (Transaction, error) {
	return &mapTxn{s: s, writable: writable, pending: make(map[string][]byte)}, nil
}

func (s *mapStorage) Close() error { return nil }

type mapTxn struct {
	s        *mapStorage
	writable bool
	pending  map[string][]byte
}

func (t *mapTxn) Get(table Table, key []byte) ([]byte, error) {
	k := string(PrefixKey(table, key))
	if v, ok := t.pending[k]; ok {
		return v, nil
	}
	if v, ok := t.s.data[k]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func (t *mapTxn) Set(table Table, key, value []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	if t.s.failSet != nil {
		return t.s.failSet
	}
	t.pending[string(PrefixKey(table, key))] = value
	return nil
}

func (t *mapTxn) Commit() error {
	if t.s.failCommit != nil {
		return t.s.failCommit
	}
	for k, v := range t.pending {
		t.s.data[k] = v
	}
	t.s.commits++
	return nil
}

func (t *mapTxn) Rollback() error {
	t.pending = nil
	t.s.rollbacks++
	return nil
}

// identityKeyer uses the term itself as key
type identityKeyer struct{}

func (identityKeyer) TermKey(term string) []byte { return []byte(term) }

func TestMemoryTermSet(t *testing.T) {
	set := NewMemoryTermSet()

	added, err := set.Add("<http://example.org/a>")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = set.Add("<http://example.org/a>")
	require.NoError(t, err)
	assert.False(t, added)

	ok, err := set.Contains("<http://example.org/a>")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = set.Contains("<http://example.org/A>")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 1, set.Len())
	assert.NoError(t, set.Close())
}

func TestStoredTermSetBatches(t *testing.T) {
	storage := newMapStorage()
	set, err := NewStoredTermSet(storage, TableEntities, identityKeyer{}, 2)
	require.NoError(t, err)

	for _, term := range []string{"<a>", "<b>", "<a>", "<c>"} {
		_, err := set.Add(term)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, 1, storage.commits, "one full batch committed")

	// <c> is only pending but must be visible
	ok, err := set.Contains("<c>")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = set.Contains("<a>")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, set.Close())
	assert.Equal(t, 2, storage.commits)
	assert.Equal(t, []byte("<c>"), storage.data[string(PrefixKey(TableEntities, []byte("<c>")))])
	assert.NoError(t, set.Close(), "closing twice is a no-op")
}

func TestStoredTermSetRollsBackFailedWrite(t *testing.T) {
	storage := newMapStorage()
	set, err := NewStoredTermSet(storage, TableEntities, identityKeyer{}, 10)
	require.NoError(t, err)

	_, err = set.Add("<a>")
	require.NoError(t, err)

	storage.failSet = errors.New("disk full")
	added, err := set.Add("<b>")
	assert.False(t, added)
	assert.ErrorContains(t, err, "failed to store entities term: disk full")
	assert.Equal(t, 1, storage.rollbacks)
	assert.Equal(t, 0, storage.commits)
	assert.Empty(t, storage.data, "the pending batch is discarded")

	_, err = set.Contains("<a>")
	assert.ErrorIs(t, err, ErrSetClosed)
	_, err = set.Add("<c>")
	assert.ErrorIs(t, err, ErrSetClosed)
	assert.NoError(t, set.Close())
	assert.Equal(t, 1, storage.rollbacks)
}

func TestStoredTermSetRollsBackFailedCommit(t *testing.T) {
	storage := newMapStorage()
	storage.failCommit = errors.New("conflict")
	set, err := NewStoredTermSet(storage, TablePredicates, identityKeyer{}, 2)
	require.NoError(t, err)

	_, err = set.Add("<p>")
	require.NoError(t, err)
	added, err := set.Add("<q>")
	assert.True(t, added)
	assert.ErrorContains(t, err, "failed to commit predicates terms: conflict")
	assert.Equal(t, 1, storage.rollbacks)

	_, err = set.Contains("<p>")
	assert.ErrorIs(t, err, ErrSetClosed)
}

func TestStoredTermSetRollsBackOnClose(t *testing.T) {
	storage := newMapStorage()
	set, err := NewStoredTermSet(storage, TableEntities, identityKeyer{}, 10)
	require.NoError(t, err)
	_, err = set.Add("<a>")
	require.NoError(t, err)

	storage.failCommit = errors.New("closed")
	assert.ErrorContains(t, set.Close(), "failed to commit entities terms: closed")
	assert.Equal(t, 1, storage.rollbacks)
	assert.NoError(t, set.Close())
}

func TestStoredSetsAreSeparatedByTable(t *testing.T) {
	storage := newMapStorage()
	factory := StoredSets(storage, identityKeyer{}, 0)

	entities, err := factory(TableEntities)
	require.NoError(t, err)
	predicates, err := factory(TablePredicates)
	require.NoError(t, err)

	_, err = entities.Add("<x>")
	require.NoError(t, err)

	ok, err := predicates.Contains("<x>")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, entities.Close())
	require.NoError(t, predicates.Close())
}

func TestTables(t *testing.T) {
	assert.Equal(t, "entities", TableEntities.String())
	assert.Equal(t, "predicates", TablePredicates.String())
	assert.Equal(t, "frontier", FrontierTable(3).String())
	assert.Equal(t, Table(5), FrontierTable(3))
	assert.Equal(t, []byte{byte(TablePredicates), 'k'}, PrefixKey(TablePredicates, []byte("k")))
}
