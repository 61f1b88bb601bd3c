package settlement

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/axiomesh/axiom-da-node/pkg/types"
)

const (
	Namespace         = "settlement"
	PostMethod        = Namespace + "_postCommitment"
	EventSubscription = "commitmentEvents"
)

type EventKind int

const (
	Accepted EventKind = iota
	Rejected
)

func (k EventKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "accepted":
		*k = Accepted
	case "rejected":
		*k = Rejected
	default:
		return errors.Errorf("unknown commitment event kind %q", text)
	}
	return nil
}

// CommitmentEvent is the settlement layer's verdict on a posted commitment.
type CommitmentEvent struct {
	Kind   EventKind `json:"kind"`
	Height uint64    `json:"height"`
	Reason string    `json:"reason,omitempty"`
}

//go:generate mockgen -destination mock_settlement/mock_settlement.go -package mock_settlement -source settlement.go -typed
type Client interface {
	PostCommitment(ctx context.Context, commitment *types.BlockCommitment) error

	// SubscribeEvents streams commitment events until ctx is done. The channel is
	// closed when the subscription can not be kept alive anymore.
	SubscribeEvents(ctx context.Context) (<-chan *CommitmentEvent, error)

	Close()
}
