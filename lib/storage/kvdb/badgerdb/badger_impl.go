package badgerdb

import (
	"bytes"
	"errors"

	"github.com/dgraph-io/badger/v3"

	"github.com/xuperchain/xengine/lib/storage/kvdb"
)

// BadgerDatabase kvdb driver on badger
type BadgerDatabase struct {
	path string
	db   *badger.DB
}

func init() {
	kvdb.Register(kvdb.KVEngineTypeBadger, NewKVDBInstance)
}

// NewKVDBInstance open a badger instance
func NewKVDBInstance(param *kvdb.KVParameter) (kvdb.Database, error) {
	opts := badger.DefaultOptions(param.DBPath).WithLogger(nil)
	if param.MemoryMode {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	if param.MemCacheSize > 0 {
		opts = opts.WithBlockCacheSize(int64(param.MemCacheSize) << 20)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerDatabase{path: param.DBPath, db: db}, nil
}

// Path returns the path to the database directory.
func (bdb *BadgerDatabase) Path() string {
	return bdb.path
}

func (bdb *BadgerDatabase) Get(key []byte) ([]byte, error) {
	var value []byte
	err := bdb.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, kvdb.ErrKeyNotFound
	}
	return value, err
}

func (bdb *BadgerDatabase) Has(key []byte) (bool, error) {
	_, err := bdb.Get(key)
	if kvdb.ErrNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (bdb *BadgerDatabase) Put(key []byte, value []byte) error {
	return bdb.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (bdb *BadgerDatabase) Delete(key []byte) error {
	return bdb.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (bdb *BadgerDatabase) Close() error {
	return bdb.db.Close()
}

func (bdb *BadgerDatabase) NewBatch() kvdb.Batch {
	return &BadgerBatch{db: bdb.db}
}

func (bdb *BadgerDatabase) NewIteratorWithRange(start []byte, limit []byte) kvdb.Iterator {
	txn := bdb.db.NewTransaction(false)
	return &badgerIterator{
		txn:   txn,
		it:    txn.NewIterator(badger.DefaultIteratorOptions),
		start: start,
		limit: limit,
	}
}

func (bdb *BadgerDatabase) NewIteratorWithPrefix(prefix []byte) kvdb.Iterator {
	return bdb.NewIteratorWithRange(prefix, kvdb.BytesPrefixLimit(prefix))
}

type badgerIterator struct {
	txn     *badger.Txn
	it      *badger.Iterator
	start   []byte
	limit   []byte
	started bool
	key     []byte
	value   []byte
	err     error
}

func (bi *badgerIterator) Next() bool {
	if bi.err != nil {
		return false
	}
	if !bi.started {
		bi.it.Seek(bi.start)
		bi.started = true
	} else {
		bi.it.Next()
	}
	if !bi.it.Valid() {
		return false
	}
	item := bi.it.Item()
	if bi.limit != nil && bytes.Compare(item.Key(), bi.limit) >= 0 {
		return false
	}
	bi.key = item.KeyCopy(bi.key[:0])
	bi.value, bi.err = item.ValueCopy(bi.value[:0])
	return bi.err == nil
}

func (bi *badgerIterator) Key() []byte {
	return bi.key
}

func (bi *badgerIterator) Value() []byte {
	return bi.value
}

func (bi *badgerIterator) Error() error {
	return bi.err
}

func (bi *badgerIterator) Release() {
	bi.it.Close()
	bi.txn.Discard()
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// BadgerBatch buffers writes and commits them in a single transaction
type BadgerBatch struct {
	db   *badger.DB
	ops  []batchOp
	size int
}

func (b *BadgerBatch) Put(key []byte, value []byte) error {
	b.ops = append(b.ops, batchOp{key: append([]byte{}, key...), value: append([]byte{}, value...)})
	b.size += len(value)
	return nil
}

func (b *BadgerBatch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{key: append([]byte{}, key...), delete: true})
	b.size += len(key)
	return nil
}

// Write 单个事务提交, 超过事务大小限制时返回 badger.ErrTxnTooBig
func (b *BadgerBatch) Write() error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, op := range b.ops {
			var err error
			if op.delete {
				err = txn.Delete(op.key)
			} else {
				err = txn.Set(op.key, op.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BadgerBatch) ValueSize() int {
	return b.size
}

func (b *BadgerBatch) Reset() {
	b.ops = b.ops[:0]
	b.size = 0
}
