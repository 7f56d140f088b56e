package leveldb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/xuperchain/xengine/lib/storage/kvdb"
)

const (
	defaultCacheMB = 16
	defaultFds     = 16
)

// LDBDatabase define data structure of storage
type LDBDatabase struct {
	fn string
	db *leveldb.DB
}

func init() {
	kvdb.Register(kvdb.KVEngineTypeLDB, NewKVDBInstance)
}

// NewKVDBInstance open a leveldb instance, on disk or in memory
func NewKVDBInstance(param *kvdb.KVParameter) (kvdb.Database, error) {
	ldb := &LDBDatabase{}
	var err error
	if param.MemoryMode {
		err = ldb.OpenMemory()
	} else {
		err = ldb.Open(param.DBPath, param.MemCacheSize, param.FileHandlersCacheSize)
	}
	if err != nil {
		return nil, err
	}
	return ldb, nil
}

// Open opens an instance of LDB with parameters (ldb path and other options)
func (ldb *LDBDatabase) Open(path string, cache, fds int) error {
	if cache <= 0 {
		cache = defaultCacheMB
	}
	if fds <= 0 {
		fds = defaultFds
	}
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: fds,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return err
	}
	ldb.fn = path
	ldb.db = db
	return nil
}

// OpenMemory opens an LDB backed by memory storage
func (ldb *LDBDatabase) OpenMemory() error {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return err
	}
	ldb.fn = ":memory:"
	ldb.db = db
	return nil
}

// Path returns the path to the database directory.
func (ldb *LDBDatabase) Path() string {
	return ldb.fn
}

// Put puts the given key / value to the queue
func (ldb *LDBDatabase) Put(key []byte, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

// Has if the given key exists
func (ldb *LDBDatabase) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

// Get returns the given key if it's present.
func (ldb *LDBDatabase) Get(key []byte) ([]byte, error) {
	dat, err := ldb.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, kvdb.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return dat, nil
}

// Delete deletes the key from the queue and database
func (ldb *LDBDatabase) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}

// NewIteratorWithRange returns a new iterator over [start, limit)
func (ldb *LDBDatabase) NewIteratorWithRange(start []byte, limit []byte) kvdb.Iterator {
	return &ldbIterator{ldb.db.NewIterator(&util.Range{Start: start, Limit: limit}, nil)}
}

// NewIteratorWithPrefix returns a iterator over keys with the prefix
func (ldb *LDBDatabase) NewIteratorWithPrefix(prefix []byte) kvdb.Iterator {
	return &ldbIterator{ldb.db.NewIterator(util.BytesPrefix(prefix), nil)}
}

// Close close database instance
func (ldb *LDBDatabase) Close() error {
	return ldb.db.Close()
}

// NewBatch new a batch for atomic writes
func (ldb *LDBDatabase) NewBatch() kvdb.Batch {
	return &LDBBatch{db: ldb.db, b: new(leveldb.Batch)}
}

type ldbIterator struct {
	iterator.Iterator
}

func (it *ldbIterator) Error() error {
	return it.Iterator.Error()
}

// LDBBatch define a batch data structure
type LDBBatch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

// Put put a key/value to batch
func (b *LDBBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(value)
	return nil
}

// Delete delete a key from batch
func (b *LDBBatch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size += len(key)
	return nil
}

// Write write batch to database atomically
func (b *LDBBatch) Write() error {
	return b.db.Write(b.b, nil)
}

// ValueSize return value size of batch
func (b *LDBBatch) ValueSize() int {
	return b.size
}

// Reset reset batch
func (b *LDBBatch) Reset() {
	b.b.Reset()
	b.size = 0
}
