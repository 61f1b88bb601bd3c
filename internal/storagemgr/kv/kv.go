package kv

// Storage is a flat byte key-value store. Get returns nil for an absent key.
type Storage interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
	Close() error
}

// Batch buffers writes until Commit applies them atomically.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Commit() error
	Size() int
	Reset()
}
