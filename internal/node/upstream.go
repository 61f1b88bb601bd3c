package node

import (
	"context"

	"github.com/axiomesh/axiom-da-node/api/sequencerpb"
	"github.com/axiomesh/axiom-da-node/internal/daclient"
	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

// Stream is a session of consecutive DA blocks. C is closed when it ends.
type Stream interface {
	C() <-chan *sequencerpb.BlockV1
	Err() error
	Close()
}

// Upstream is the DA sequencer as seen by the task.
type Upstream interface {
	OpenStream(ctx context.Context, height uint64) (Stream, <-chan struct{}, error)
	BatchWrite(ctx context.Context, frame []byte) (bool, error)
	SendState(ctx context.Context, signer *crypto.Ed25519PrivateKey, state *types.ExecutionState) (bool, error)
}

type daUpstream struct {
	*daclient.Client
}

// FromDAClient adapts a connected DA client.
func FromDAClient(c *daclient.Client) Upstream {
	return &daUpstream{Client: c}
}

func (u *daUpstream) OpenStream(ctx context.Context, height uint64) (Stream, <-chan struct{}, error) {
	s, alert, err := u.StreamReadFromHeight(ctx, height)
	if err != nil {
		return nil, nil, err
	}
	return s, alert, nil
}
