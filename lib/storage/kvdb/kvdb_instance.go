package kvdb

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

const (
	KVEngineTypeLDB    = "leveldb"
	KVEngineTypeBadger = "badger"
)

// KVParameter options handed to a storage driver
type KVParameter struct {
	DBPath       string
	KVEngineType string
	// MemoryMode keeps all data in memory, DBPath is ignored
	MemoryMode bool
	// MemCacheSize in MB
	MemCacheSize          int
	FileHandlersCacheSize int
}

func (param *KVParameter) validate() error {
	if param == nil {
		return errors.New("kv parameter is nil")
	}
	if param.KVEngineType == "" {
		return errors.New("kv engine type is empty")
	}
	if !param.MemoryMode && param.DBPath == "" {
		return errors.Errorf("kv engine %s needs a db path", param.KVEngineType)
	}
	return nil
}

type NewStorageFunc func(*KVParameter) (Database, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]NewStorageFunc)
)

// Register a driver, drivers call it in init()
func Register(name string, f NewStorageFunc) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if f == nil {
		panic("kvdb: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("kvdb: Register called twice for driver " + name)
	}
	drivers[name] = f
}

// Drivers names of the registered drivers
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	list := make([]string, 0, len(drivers))
	for name := range drivers {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// CreateKVInstance open a database with the driver named by KVEngineType
func CreateKVInstance(param *KVParameter) (Database, error) {
	if err := param.validate(); err != nil {
		return nil, err
	}

	driversMu.RLock()
	f, ok := drivers[param.KVEngineType]
	driversMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("kv engine %s not registered, have %v", param.KVEngineType, Drivers())
	}

	db, err := f(param)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s at %q", param.KVEngineType, param.DBPath)
	}
	return db, nil
}
