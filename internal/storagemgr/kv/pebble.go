package kv

import (
	"bytes"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type pebbleStorage struct {
	db     *pebble.DB
	wo     *pebble.WriteOptions
	logger logrus.FieldLogger
}

func NewPebble(path string, opts *pebble.Options, wo *pebble.WriteOptions, logger logrus.FieldLogger) (Storage, error) {
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble at %s", path)
	}
	if wo == nil {
		wo = pebble.Sync
	}
	logger.WithField("path", path).Info("Pebble storage opened")
	return &pebbleStorage{
		db:     db,
		wo:     wo,
		logger: logger,
	}, nil
}

func (s *pebbleStorage) Get(key []byte) ([]byte, error) {
	v, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()
	return bytes.Clone(v), nil
}

func (s *pebbleStorage) Has(key []byte) (bool, error) {
	_, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	_ = closer.Close()
	return true, nil
}

func (s *pebbleStorage) Put(key, value []byte) error {
	return s.db.Set(key, value, s.wo)
}

func (s *pebbleStorage) Delete(key []byte) error {
	return s.db.Delete(key, s.wo)
}

func (s *pebbleStorage) NewBatch() Batch {
	return &pebbleBatch{
		batch: s.db.NewBatch(),
		db:    s.db,
		wo:    s.wo,
	}
}

func (s *pebbleStorage) Close() error {
	return s.db.Close()
}

type pebbleBatch struct {
	batch *pebble.Batch
	db    *pebble.DB
	wo    *pebble.WriteOptions
}

func (b *pebbleBatch) Put(key, value []byte) {
	_ = b.batch.Set(key, value, nil)
}

func (b *pebbleBatch) Delete(key []byte) {
	_ = b.batch.Delete(key, nil)
}

func (b *pebbleBatch) Commit() error {
	err := b.batch.Commit(b.wo)
	_ = b.batch.Close()
	b.batch = b.db.NewBatch()
	return err
}

func (b *pebbleBatch) Size() int {
	return b.batch.Len()
}

func (b *pebbleBatch) Reset() {
	b.batch.Reset()
}
