package xmodel

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/xuperchain/xengine/kernel/ledger"
	"github.com/xuperchain/xengine/lib/logs"
	"github.com/xuperchain/xengine/lib/metrics"
	"github.com/xuperchain/xengine/lib/storage/kvdb"
)

const (
	valueTablePrefix = "v/"
	rootTablePrefix  = "r/"
	metaTablePrefix  = "m/"

	DefaultCacheSize = 10000
)

var headKey = []byte("head")

var (
	// ErrStorage underlying kv storage failure
	ErrStorage = errors.New("storage error")
	// ErrUnknownRoot no committed version has the root
	ErrUnknownRoot = errors.New("unknown state root")
)

var _ ledger.GlobalState = (*XModel)(nil)

// XModel 多版本全局状态, 每个key的每次提交按高度单独存储.
// Readers never lock; Commit is the single writer.
type XModel struct {
	db         kvdb.Database
	valueTable kvdb.Database
	rootTable  kvdb.Database
	metaTable  kvdb.Database
	cache      *lru.Cache
	logger     logs.Logger

	commitMu sync.Mutex
	head     atomic.Value // ledger.Version
}

type cacheKey struct {
	key    ledger.Key
	height uint64
}

type cacheItem struct {
	value ledger.Value
	found bool
}

// NewXModel open global state stored in db, cacheSize <= 0 uses the default
func NewXModel(db kvdb.Database, cacheSize int, logger logs.Logger) (*XModel, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logs.NewDiscardLogger()
	}

	x := &XModel{
		db:         db,
		valueTable: kvdb.NewTable(db, valueTablePrefix),
		rootTable:  kvdb.NewTable(db, rootTablePrefix),
		metaTable:  kvdb.NewTable(db, metaTablePrefix),
		cache:      cache,
		logger:     logger,
	}

	head, err := x.loadHead()
	if err != nil {
		return nil, err
	}
	x.head.Store(head)
	metrics.StateHeightGauge.Set(float64(head.Height))
	x.logger.Info("global state opened", "height", head.Height, "root", head.Root)
	return x, nil
}

func (x *XModel) loadHead() (ledger.Version, error) {
	raw, err := x.metaTable.Get(headKey)
	if kvdb.ErrNotFound(err) {
		return ledger.Version{}, nil
	}
	if err != nil {
		return ledger.Version{}, errors.Wrapf(ErrStorage, "load head: %v", err)
	}
	return decodeVersion(raw)
}

// Head the latest committed version
func (x *XModel) Head() ledger.Version {
	return x.head.Load().(ledger.Version)
}

func (x *XModel) Snapshot() ledger.Snapshot {
	return &snapshot{x: x, version: x.Head()}
}

// SnapshotAt reopen the version committed with root, the zero root is the empty state
func (x *XModel) SnapshotAt(root ledger.Hash) (ledger.Snapshot, error) {
	if root == (ledger.Hash{}) {
		return &snapshot{x: x}, nil
	}
	raw, err := x.rootTable.Get(root[:])
	if kvdb.ErrNotFound(err) {
		return nil, errors.Wrapf(ErrUnknownRoot, "%s", root)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrStorage, "lookup root: %v", err)
	}
	if len(raw) != 8 {
		return nil, errors.Wrapf(ErrStorage, "bad root index for %s", root)
	}
	return &snapshot{x: x, version: ledger.Version{Height: binary.BigEndian.Uint64(raw), Root: root}}, nil
}

func (x *XModel) Read(s ledger.Snapshot, key ledger.Key) (ledger.Value, bool, error) {
	return x.get(key, s.Version().Height)
}

// get newest value of key committed at or below height
func (x *XModel) get(key ledger.Key, height uint64) (ledger.Value, bool, error) {
	if height == 0 {
		return nil, false, nil
	}
	ck := cacheKey{key: key, height: height}
	if item, ok := x.cache.Get(ck); ok {
		metrics.CacheLookup("state", true)
		ci := item.(cacheItem)
		return ci.value, ci.found, nil
	}
	metrics.CacheLookup("state", false)

	prefix := key.Bytes()
	it := x.valueTable.NewIteratorWithRange(versionedKey(key, height), kvdb.BytesPrefixLimit(prefix))
	defer it.Release()

	var item cacheItem
	if it.Next() {
		value, err := ledger.DecodeValue(it.Value())
		if err != nil {
			return nil, false, errors.Wrapf(ErrStorage, "decode %s: %v", key, err)
		}
		item = cacheItem{value: value, found: true}
	}
	if err := it.Error(); err != nil {
		return nil, false, errors.Wrapf(ErrStorage, "read %s: %v", key, err)
	}
	x.cache.Add(ck, item)
	return item.value, item.found, nil
}

// Commit apply effects on top of the current head as one new version.
// An empty effect set commits nothing and returns the head.
func (x *XModel) Commit(effects *ledger.EffectSet) (ledger.Version, error) {
	x.commitMu.Lock()
	defer x.commitMu.Unlock()

	head := x.Head()
	if effects == nil || effects.Len() == 0 {
		return head, nil
	}
	begin := time.Now()
	version, err := x.commit(head, effects)
	if err != nil {
		metrics.StateCommitCounter.WithLabelValues("fail").Inc()
		x.logger.Warn("commit failed", "height", head.Height+1, "err", err)
		return head, err
	}
	x.head.Store(version)

	metrics.StateCommitCounter.WithLabelValues("ok").Inc()
	metrics.StateCommitHistogram.Observe(time.Since(begin).Seconds())
	metrics.StateHeightGauge.Set(float64(version.Height))
	x.logger.Info("commit succ", "height", version.Height, "root", version.Root, "keys", effects.Len())
	return version, nil
}

func (x *XModel) commit(head ledger.Version, effects *ledger.EffectSet) (ledger.Version, error) {
	height := head.Height + 1
	batch := x.db.NewBatch()
	valueBatch := kvdb.NewTableBatch(batch, valueTablePrefix)

	hasher, _ := blake2b.New256(nil)
	hasher.Write(head.Root[:])
	var lenBuf [4]byte
	for _, key := range effects.Keys() {
		current, exists, err := x.get(key, head.Height)
		if err != nil {
			return head, err
		}
		value, err := effects.Transforms[key].Apply(current, exists)
		if err != nil {
			return head, errors.WithMessagef(err, "apply to %s", key)
		}
		encoded, err := ledger.EncodeValue(value)
		if err != nil {
			return head, err
		}
		if err := valueBatch.Put(versionedKey(key, height), encoded); err != nil {
			return head, errors.Wrapf(ErrStorage, "%v", err)
		}

		hasher.Write(key.Bytes())
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(encoded)))
		hasher.Write(lenBuf[:])
		hasher.Write(encoded)
	}

	version := ledger.Version{Height: height}
	copy(version.Root[:], hasher.Sum(nil))

	var heightBuf [8]byte
	binary.BigEndian.PutUint64(heightBuf[:], height)
	if err := kvdb.NewTableBatch(batch, rootTablePrefix).Put(version.Root[:], heightBuf[:]); err != nil {
		return head, errors.Wrapf(ErrStorage, "%v", err)
	}
	if err := kvdb.NewTableBatch(batch, metaTablePrefix).Put(headKey, encodeVersion(version)); err != nil {
		return head, errors.Wrapf(ErrStorage, "%v", err)
	}
	if err := batch.Write(); err != nil {
		return head, errors.Wrapf(ErrStorage, "write batch: %v", err)
	}
	return version, nil
}

func (x *XModel) Close() error {
	return x.db.Close()
}

type snapshot struct {
	x       *XModel
	version ledger.Version
}

func (s *snapshot) Get(key ledger.Key) (ledger.Value, bool, error) {
	return s.x.get(key, s.version.Height)
}

func (s *snapshot) Version() ledger.Version {
	return s.version
}
