package kvdb

// table 在同一个库上按前缀划分逻辑表
type table struct {
	db     Database
	prefix string
}

// NewTable view of db whose keys are all prefixed
func NewTable(db Database, prefix string) Database {
	return &table{db: db, prefix: prefix}
}

func (t *table) key(k []byte) []byte {
	return append([]byte(t.prefix), k...)
}

func (t *table) Get(key []byte) ([]byte, error) {
	return t.db.Get(t.key(key))
}

func (t *table) Has(key []byte) (bool, error) {
	return t.db.Has(t.key(key))
}

func (t *table) Put(key []byte, value []byte) error {
	return t.db.Put(t.key(key), value)
}

func (t *table) Delete(key []byte) error {
	return t.db.Delete(t.key(key))
}

// Close does nothing, the underlying db is owned by the caller
func (t *table) Close() error {
	return nil
}

func (t *table) NewBatch() Batch {
	return NewTableBatch(t.db.NewBatch(), t.prefix)
}

func (t *table) NewIteratorWithRange(start []byte, limit []byte) Iterator {
	var rawLimit []byte
	if limit == nil {
		rawLimit = BytesPrefixLimit([]byte(t.prefix))
	} else {
		rawLimit = t.key(limit)
	}
	return &tableIterator{it: t.db.NewIteratorWithRange(t.key(start), rawLimit), prefixLen: len(t.prefix)}
}

func (t *table) NewIteratorWithPrefix(prefix []byte) Iterator {
	return &tableIterator{it: t.db.NewIteratorWithPrefix(t.key(prefix)), prefixLen: len(t.prefix)}
}

type tableIterator struct {
	it        Iterator
	prefixLen int
}

func (ti *tableIterator) Next() bool {
	return ti.it.Next()
}

func (ti *tableIterator) Key() []byte {
	key := ti.it.Key()
	if len(key) < ti.prefixLen {
		return nil
	}
	return key[ti.prefixLen:]
}

func (ti *tableIterator) Value() []byte {
	return ti.it.Value()
}

func (ti *tableIterator) Error() error {
	return ti.it.Error()
}

func (ti *tableIterator) Release() {
	ti.it.Release()
}

type tableBatch struct {
	batch  Batch
	prefix string
}

// NewTableBatch prefixes every key written through b, several table batches
// may share one underlying batch and are written together
func NewTableBatch(b Batch, prefix string) Batch {
	return &tableBatch{batch: b, prefix: prefix}
}

func (tb *tableBatch) Put(key, value []byte) error {
	return tb.batch.Put(append([]byte(tb.prefix), key...), value)
}

func (tb *tableBatch) Delete(key []byte) error {
	return tb.batch.Delete(append([]byte(tb.prefix), key...))
}

func (tb *tableBatch) Write() error {
	return tb.batch.Write()
}

func (tb *tableBatch) ValueSize() int {
	return tb.batch.ValueSize()
}

func (tb *tableBatch) Reset() {
	tb.batch.Reset()
}
