package settlement

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/pkg/types"
)

var _ Client = (*MockClient)(nil)

// MockClient is an in-memory settlement layer. With auto accept on every
// posted commitment is answered with an Accepted event.
type MockClient struct {
	lock       sync.Mutex
	posted     []*types.BlockCommitment
	autoAccept bool

	events chan *CommitmentEvent
	logger logrus.FieldLogger
}

func NewMockClient(autoAccept bool, logger logrus.FieldLogger) *MockClient {
	return &MockClient{
		autoAccept: autoAccept,
		events:     make(chan *CommitmentEvent, eventBufferSize),
		logger:     logger,
	}
}

func (m *MockClient) PostCommitment(_ context.Context, commitment *types.BlockCommitment) error {
	m.lock.Lock()
	cp := *commitment
	m.posted = append(m.posted, &cp)
	m.lock.Unlock()
	postCounter.WithLabelValues("success").Inc()

	if m.autoAccept {
		m.Emit(&CommitmentEvent{Kind: Accepted, Height: commitment.Height})
	}
	return nil
}

// Emit queues an event for the subscriber, dropping it when the queue is full.
func (m *MockClient) Emit(ev *CommitmentEvent) {
	select {
	case m.events <- ev:
		eventCounter.WithLabelValues(ev.Kind.String()).Inc()
	default:
		m.logger.WithFields(logrus.Fields{
			"kind":   ev.Kind,
			"height": ev.Height,
		}).Warn("Drop settlement event, queue is full")
	}
}

func (m *MockClient) Posted() []*types.BlockCommitment {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]*types.BlockCommitment(nil), m.posted...)
}

func (m *MockClient) SubscribeEvents(_ context.Context) (<-chan *CommitmentEvent, error) {
	return m.events, nil
}

func (m *MockClient) Close() {}
