package dev

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/internal/executor"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

var _ executor.Executor = (*ExecutorDev)(nil)

var (
	ErrUnexpectedHeight = errors.New("block height does not follow the executor head")

	headKey     = []byte("exec/head")
	statePrefix = []byte("exec/state/")
)

type record struct {
	Commitment common.Hash
	Version    uint64
	Timestamp  uint64
}

// ExecutorDev executes blocks without a VM: the commitment is a hash chain over
// block ids, timestamps and tx hashes, and the ledger version counts transactions.
type ExecutorDev struct {
	store  kv.Storage
	logger logrus.FieldLogger

	lock sync.Mutex
	head uint64
	last record
}

// New creates executor instance
func New(store kv.Storage, logger logrus.FieldLogger) (*ExecutorDev, error) {
	exec := &ExecutorDev{
		store:  store,
		logger: logger,
	}
	raw, err := store.Get(headKey)
	if err != nil {
		return nil, errors.Wrap(err, "load executor head")
	}
	if raw != nil {
		exec.head = binary.BigEndian.Uint64(raw)
		rec, err := exec.recordAt(exec.head)
		if err != nil {
			return nil, err
		}
		exec.last = *rec
	}
	exec.logger.WithField("height", exec.head).Info("BlockExecutor-DEV loaded")
	return exec, nil
}

func (exec *ExecutorDev) ExecuteBlock(ctx context.Context, block *types.Block) (*types.BlockCommitment, *types.ExecutionState, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	current := time.Now()

	exec.lock.Lock()
	defer exec.lock.Unlock()

	if block.Height != exec.head+1 {
		return nil, nil, errors.Wrapf(ErrUnexpectedHeight, "head %d, block %d", exec.head, block.Height)
	}

	hasher := crypto.NewKeccakState()
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, block.Metadata.Timestamp)
	_, _ = hasher.Write(exec.last.Commitment.Bytes())
	_, _ = hasher.Write(block.ID.Bytes())
	_, _ = hasher.Write(ts)
	for _, h := range block.TxHashes() {
		_, _ = hasher.Write(h.Bytes())
	}
	var commitment common.Hash
	_, _ = hasher.Read(commitment[:])

	rec := record{
		Commitment: commitment,
		Version:    exec.last.Version + uint64(len(block.Transactions)),
		Timestamp:  block.Metadata.Timestamp,
	}
	raw, err := rlp.EncodeToBytes(&rec)
	if err != nil {
		return nil, nil, err
	}
	batch := exec.store.NewBatch()
	batch.Put(stateKey(block.Height), raw)
	batch.Put(headKey, encodeHeight(block.Height))
	if err := batch.Commit(); err != nil {
		return nil, nil, errors.Wrapf(err, "persist execution of block %d", block.Height)
	}
	exec.head = block.Height
	exec.last = rec

	exec.logger.WithFields(logrus.Fields{
		"height": block.Height,
		"count":  len(block.Transactions),
		"elapse": time.Since(current),
	}).Debug("Executed block")

	return &types.BlockCommitment{
			Height:     block.Height,
			BlockID:    block.ID,
			Commitment: commitment,
		}, &types.ExecutionState{
			BlockHeight:     block.Height,
			LedgerTimestamp: rec.Timestamp,
			LedgerVersion:   rec.Version,
		}, nil
}

func (exec *ExecutorDev) CurrentHeight() uint64 {
	exec.lock.Lock()
	defer exec.lock.Unlock()
	return exec.head
}

func (exec *ExecutorDev) RevertToHeight(height uint64) error {
	exec.lock.Lock()
	defer exec.lock.Unlock()

	if height > exec.head {
		return errors.Errorf("revert target %d is above head %d", height, exec.head)
	}
	if height == exec.head {
		return nil
	}
	rec := &record{}
	if height > 0 {
		var err error
		if rec, err = exec.recordAt(height); err != nil {
			return err
		}
	}

	batch := exec.store.NewBatch()
	for h := height + 1; h <= exec.head; h++ {
		batch.Delete(stateKey(h))
	}
	batch.Put(headKey, encodeHeight(height))
	if err := batch.Commit(); err != nil {
		return errors.Wrapf(err, "revert to %d", height)
	}

	exec.logger.WithFields(logrus.Fields{
		"from": exec.head,
		"to":   height,
	}).Warn("Reverted executor head")
	exec.head = height
	exec.last = *rec
	return nil
}

// StateAt returns the execution state recorded at height.
func (exec *ExecutorDev) StateAt(height uint64) (*types.ExecutionState, error) {
	rec, err := exec.recordAt(height)
	if err != nil {
		return nil, err
	}
	return &types.ExecutionState{
		BlockHeight:     height,
		LedgerTimestamp: rec.Timestamp,
		LedgerVersion:   rec.Version,
	}, nil
}

func (exec *ExecutorDev) recordAt(height uint64) (*record, error) {
	raw, err := exec.store.Get(stateKey(height))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.Errorf("no execution record at height %d", height)
	}
	rec := &record{}
	if err := rlp.DecodeBytes(raw, rec); err != nil {
		return nil, errors.Wrapf(err, "decode execution record %d", height)
	}
	return rec, nil
}

func stateKey(height uint64) []byte {
	return append(append([]byte{}, statePrefix...), encodeHeight(height)...)
}

func encodeHeight(height uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, height)
	return buf
}
