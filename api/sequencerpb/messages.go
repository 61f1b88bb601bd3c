package sequencerpb

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/axiomesh/axiom-da-node/pkg/types"
)

type StreamReadFromHeightRequest struct {
	Height uint64
}

type StreamReadFromHeightResponse struct {
	Response *BlockResponse `rlp:"nil"`
}

// BlockResponse carries either a heartbeat or a block.
type BlockResponse struct {
	Heartbeat bool
	BlockV1   *BlockV1 `rlp:"nil"`
}

type BlockV1 struct {
	Height    uint64
	BlockID   []byte
	Data      []byte
	NodeState *NodeState `rlp:"nil"`
}

type NodeState struct {
	BlockHeight     uint64
	LedgerTimestamp uint64
	LedgerVersion   uint64
}

type BatchWriteRequest struct {
	Data []byte
}

type BatchWriteResponse struct {
	Answer bool
}

type SendStateRequest struct {
	State        *NodeState `rlp:"nil"`
	VerifyingKey []byte
	Signature    []byte
}

type SendStateResponse struct {
	Answer bool
}

func NewHeartbeatResponse() *StreamReadFromHeightResponse {
	return &StreamReadFromHeightResponse{Response: &BlockResponse{Heartbeat: true}}
}

func NewBlockResponse(b *BlockV1) *StreamReadFromHeightResponse {
	return &StreamReadFromHeightResponse{Response: &BlockResponse{BlockV1: b}}
}

// NewBlockV1 wraps an encoded block for the wire.
func NewBlockV1(b *types.Block) (*BlockV1, error) {
	data, err := types.EncodeBlock(b)
	if err != nil {
		return nil, err
	}
	return &BlockV1{
		Height:  b.Height,
		BlockID: b.ID.Bytes(),
		Data:    data,
	}, nil
}

func (b *BlockV1) ID() common.Hash {
	return common.BytesToHash(b.BlockID)
}

func (b *BlockV1) Decode() (*types.Block, error) {
	return types.DecodeBlock(b.Data)
}

func (b *BlockV1) WithNodeState(s *NodeState) *BlockV1 {
	cp := *b
	cp.NodeState = s
	return &cp
}

func NodeStateFrom(s *types.ExecutionState) *NodeState {
	return &NodeState{
		BlockHeight:     s.BlockHeight,
		LedgerTimestamp: s.LedgerTimestamp,
		LedgerVersion:   s.LedgerVersion,
	}
}

func (s *NodeState) ExecutionState() *types.ExecutionState {
	return &types.ExecutionState{
		BlockHeight:     s.BlockHeight,
		LedgerTimestamp: s.LedgerTimestamp,
		LedgerVersion:   s.LedgerVersion,
	}
}
