package executor

import (
	"context"

	"github.com/axiomesh/axiom-da-node/pkg/types"
)

//go:generate mockgen -destination mock_executor/mock_executor.go -package mock_executor -source types.go -typed
type Executor interface {
	// ExecuteBlock runs block on top of the current head and moves the head to block.Height.
	ExecuteBlock(ctx context.Context, block *types.Block) (*types.BlockCommitment, *types.ExecutionState, error)

	// CurrentHeight returns the height of the last executed block, 0 before any.
	CurrentHeight() uint64

	// RevertToHeight drops every executed block above height.
	RevertToHeight(height uint64) error
}
