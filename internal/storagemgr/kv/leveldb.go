package kv

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

type leveldbStorage struct {
	db *leveldb.DB
	wo *opt.WriteOptions
}

func NewLeveldb(path string, o *opt.Options, sync bool) (Storage, error) {
	db, err := leveldb.OpenFile(path, o)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb at %s", path)
	}
	return &leveldbStorage{db: db, wo: &opt.WriteOptions{Sync: sync}}, nil
}

// NewMemory returns a leveldb instance backed by memory only.
func NewMemory() Storage {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		// opening a fresh memory storage cannot fail
		panic(err)
	}
	return &leveldbStorage{db: db, wo: &opt.WriteOptions{}}
}

func (s *leveldbStorage) Get(key []byte) ([]byte, error) {
	v, err := s.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func (s *leveldbStorage) Has(key []byte) (bool, error) {
	return s.db.Has(key, nil)
}

func (s *leveldbStorage) Put(key, value []byte) error {
	return s.db.Put(key, value, s.wo)
}

func (s *leveldbStorage) Delete(key []byte) error {
	return s.db.Delete(key, s.wo)
}

func (s *leveldbStorage) NewBatch() Batch {
	return &leveldbBatch{batch: new(leveldb.Batch), db: s.db, wo: s.wo}
}

func (s *leveldbStorage) Close() error {
	return s.db.Close()
}

type leveldbBatch struct {
	batch *leveldb.Batch
	db    *leveldb.DB
	wo    *opt.WriteOptions
}

func (b *leveldbBatch) Put(key, value []byte) {
	b.batch.Put(key, value)
}

func (b *leveldbBatch) Delete(key []byte) {
	b.batch.Delete(key)
}

func (b *leveldbBatch) Commit() error {
	err := b.db.Write(b.batch, b.wo)
	b.batch.Reset()
	return err
}

func (b *leveldbBatch) Size() int {
	return b.batch.Len()
}

func (b *leveldbBatch) Reset() {
	b.batch.Reset()
}
