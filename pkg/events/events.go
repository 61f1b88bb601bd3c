package events

import (
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

// ExecutedEvent is published after a block has been executed and its progress persisted.
type ExecutedEvent struct {
	Block      *types.Block
	Commitment *types.BlockCommitment
	State      *types.ExecutionState
}
