package types

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

const ExecutionStateSize = 24

type ExecutionState struct {
	BlockHeight     uint64 `json:"blockHeight"`
	LedgerTimestamp uint64 `json:"ledgerTimestamp"`
	LedgerVersion   uint64 `json:"ledgerVersion"`
}

// Encode returns the signing payload: height, ledger timestamp and ledger version as little-endian uint64s.
func (s *ExecutionState) Encode() []byte {
	buf := make([]byte, ExecutionStateSize)
	binary.LittleEndian.PutUint64(buf[0:8], s.BlockHeight)
	binary.LittleEndian.PutUint64(buf[8:16], s.LedgerTimestamp)
	binary.LittleEndian.PutUint64(buf[16:24], s.LedgerVersion)
	return buf
}

func DecodeExecutionState(raw []byte) (*ExecutionState, error) {
	if len(raw) != ExecutionStateSize {
		return nil, errors.Errorf("execution state: bad length %d, want %d", len(raw), ExecutionStateSize)
	}
	return &ExecutionState{
		BlockHeight:     binary.LittleEndian.Uint64(raw[0:8]),
		LedgerTimestamp: binary.LittleEndian.Uint64(raw[8:16]),
		LedgerVersion:   binary.LittleEndian.Uint64(raw[16:24]),
	}, nil
}

func (s *ExecutionState) Equal(o *ExecutionState) bool {
	if s == nil || o == nil {
		return s == o
	}
	return *s == *o
}

func (s *ExecutionState) String() string {
	return fmt.Sprintf("height=%d timestamp=%d version=%d", s.BlockHeight, s.LedgerTimestamp, s.LedgerVersion)
}
