package xmodel

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuperchain/xengine/kernel/ledger"
	"github.com/xuperchain/xengine/lib/storage/kvdb"
	_ "github.com/xuperchain/xengine/lib/storage/kvdb/badgerdb"
	_ "github.com/xuperchain/xengine/lib/storage/kvdb/leveldb"
)

func openDB(t *testing.T, engine string, path string) kvdb.Database {
	db, err := kvdb.CreateKVInstance(&kvdb.KVParameter{
		DBPath:       path,
		KVEngineType: engine,
		MemoryMode:   path == "",
	})
	require.NoError(t, err)
	return db
}

func newModel(t *testing.T) *XModel {
	x, err := NewXModel(openDB(t, kvdb.KVEngineTypeLDB, ""), 128, nil)
	require.NoError(t, err)
	t.Cleanup(func() { x.Close() })
	return x
}

func uref(b byte) ledger.Key {
	return ledger.URefKey(ledger.Address{b})
}

func effects(pairs ...interface{}) *ledger.EffectSet {
	e := ledger.NewEffectSet()
	for i := 0; i < len(pairs); i += 2 {
		e.Transforms[pairs[i].(ledger.Key)] = pairs[i+1].(ledger.Transform)
	}
	return e
}

func mustGet(t *testing.T, s ledger.StateReader, key ledger.Key) ledger.Value {
	v, ok, err := s.Get(key)
	require.NoError(t, err)
	require.True(t, ok, key.String())
	return v
}

func TestCommitAndRead(t *testing.T) {
	x := newModel(t)
	assert.Equal(t, ledger.Version{}, x.Head())

	v1, err := x.Commit(effects(uref(1), ledger.Write(ledger.String("a")), uref(2), ledger.Add(ledger.UInt64(5))))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v1.Height)
	assert.Equal(t, v1, x.Head())

	s := x.Snapshot()
	assert.Equal(t, ledger.String("a"), mustGet(t, s, uref(1)))
	// Add on a never written key starts from zero
	assert.Equal(t, ledger.UInt64(5), mustGet(t, s, uref(2)))
	_, ok, err := x.Read(s, uref(3))
	require.NoError(t, err)
	assert.False(t, ok)

	v2, err := x.Commit(effects(uref(2), ledger.Add(ledger.UInt64(3))))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v2.Height)
	assert.NotEqual(t, v1.Root, v2.Root)
	assert.Equal(t, ledger.UInt64(8), mustGet(t, x.Snapshot(), uref(2)))
	assert.Equal(t, ledger.String("a"), mustGet(t, x.Snapshot(), uref(1)))

	// empty commit leaves head alone
	v3, err := x.Commit(ledger.NewEffectSet())
	require.NoError(t, err)
	assert.Equal(t, v2, v3)

	hist, err := x.History(uref(2))
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, uint64(2), hist[0].Height)
	assert.Equal(t, ledger.UInt64(5), hist[1].Value)
}

func TestSnapshotIsolation(t *testing.T) {
	x := newModel(t)
	_, err := x.Commit(effects(uref(1), ledger.Write(ledger.UInt64(1))))
	require.NoError(t, err)

	old := x.Snapshot()
	_, err = x.Commit(effects(uref(1), ledger.Write(ledger.UInt64(2)), uref(2), ledger.Write(ledger.UInt64(9))))
	require.NoError(t, err)

	assert.Equal(t, ledger.UInt64(1), mustGet(t, old, uref(1)))
	_, ok, err := old.Get(uref(2))
	require.NoError(t, err)
	assert.False(t, ok)

	reopened, err := x.SnapshotAt(old.Version().Root)
	require.NoError(t, err)
	assert.Equal(t, old.Version(), reopened.Version())
	assert.Equal(t, ledger.UInt64(1), mustGet(t, reopened, uref(1)))

	empty, err := x.SnapshotAt(ledger.Hash{})
	require.NoError(t, err)
	_, ok, _ = empty.Get(uref(1))
	assert.False(t, ok)

	_, err = x.SnapshotAt(ledger.Hash{1})
	assert.ErrorIs(t, err, ErrUnknownRoot)
}

func TestFailedCommitLeavesHead(t *testing.T) {
	x := newModel(t)
	v1, err := x.Commit(effects(uref(1), ledger.Write(ledger.String("text"))))
	require.NoError(t, err)

	_, err = x.Commit(effects(uref(1), ledger.Add(ledger.UInt64(1)), uref(2), ledger.Write(ledger.UInt64(2))))
	assert.ErrorIs(t, err, ledger.ErrTypeMismatch)
	assert.Equal(t, v1, x.Head())
	_, ok, err := x.Snapshot().Get(uref(2))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentCommits(t *testing.T) {
	x := newModel(t)
	const workers = 8
	const rounds = 20

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				// both keys always move together
				_, err := x.Commit(effects(
					uref(1), ledger.Add(ledger.UInt64(1)),
					uref(2), ledger.Add(ledger.UInt64(1)),
				))
				assert.NoError(t, err)
				s := x.Snapshot()
				a, _, err := s.Get(uref(1))
				assert.NoError(t, err)
				b, _, err := s.Get(uref(2))
				assert.NoError(t, err)
				assert.Equal(t, a, b)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, uint64(workers*rounds), x.Head().Height)
	assert.Equal(t, ledger.UInt64(workers*rounds), mustGet(t, x.Snapshot(), uref(1)))
}

func TestReopen(t *testing.T) {
	for _, engine := range []string{kvdb.KVEngineTypeLDB, kvdb.KVEngineTypeBadger} {
		t.Run(engine, func(t *testing.T) {
			dir := t.TempDir()
			x, err := NewXModel(openDB(t, engine, dir), 0, nil)
			require.NoError(t, err)
			v, err := x.Commit(effects(uref(7), ledger.Write(ledger.NewUInt256(77))))
			require.NoError(t, err)
			require.NoError(t, x.Close())

			x, err = NewXModel(openDB(t, engine, dir), 0, nil)
			require.NoError(t, err)
			defer x.Close()
			assert.Equal(t, v, x.Head())
			assert.True(t, ledger.ValueEqual(ledger.NewUInt256(77), mustGet(t, x.Snapshot(), uref(7))))
		})
	}
}

type failingBatchDB struct {
	kvdb.Database
}

type failingBatch struct {
	kvdb.Batch
}

func (f failingBatchDB) NewBatch() kvdb.Batch {
	return failingBatch{f.Database.NewBatch()}
}

func (failingBatch) Write() error {
	return errors.New("device full")
}

func TestStorageError(t *testing.T) {
	x, err := NewXModel(failingBatchDB{openDB(t, kvdb.KVEngineTypeLDB, "")}, 0, nil)
	require.NoError(t, err)
	_, err = x.Commit(effects(uref(1), ledger.Write(ledger.UInt64(1))))
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, ledger.Version{}, x.Head())
}

func TestVersionedKeyOrder(t *testing.T) {
	k := uref(1)
	newer, older := versionedKey(k, 5), versionedKey(k, 4)
	assert.Less(t, string(newer), string(older))

	key, height, err := parseVersionedKey(newer)
	require.NoError(t, err)
	assert.Equal(t, k, key)
	assert.Equal(t, uint64(5), height)
}
