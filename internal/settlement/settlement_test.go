package settlement

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/axiomesh/axiom-da-node/pkg/types"
)

// settlementAPI plays the settlement layer: every posted commitment gets an
// event, rejected when its height is listed in reject.
type settlementAPI struct {
	lock    sync.Mutex
	posted  []*types.BlockCommitment
	reject  map[uint64]string
	pending chan *CommitmentEvent
}

func newSettlementAPI() *settlementAPI {
	return &settlementAPI{
		reject:  make(map[uint64]string),
		pending: make(chan *CommitmentEvent, 16),
	}
}

func (api *settlementAPI) PostCommitment(_ context.Context, c *types.BlockCommitment) error {
	api.lock.Lock()
	api.posted = append(api.posted, c)
	reason, rejected := api.reject[c.Height]
	api.lock.Unlock()

	ev := &CommitmentEvent{Kind: Accepted, Height: c.Height}
	if rejected {
		ev = &CommitmentEvent{Kind: Rejected, Height: c.Height, Reason: reason}
	}
	api.pending <- ev
	return nil
}

func (api *settlementAPI) CommitmentEvents(ctx context.Context) (*rpc.Subscription, error) {
	notifier, supported := rpc.NotifierFromContext(ctx)
	if !supported {
		return &rpc.Subscription{}, rpc.ErrNotificationsUnsupported
	}
	sub := notifier.CreateSubscription()
	go func() {
		for {
			select {
			case ev := <-api.pending:
				_ = notifier.Notify(sub.ID, ev)
			case <-sub.Err():
				return
			}
		}
	}()
	return sub, nil
}

func newTestRPCClient(t *testing.T, api *settlementAPI) (*RPCClient, *rpc.Server) {
	server := rpc.NewServer()
	require.Nil(t, server.RegisterName(Namespace, api))
	c := NewRPCClient(rpc.DialInProc(server), 2, 10*time.Millisecond, logrus.New())
	t.Cleanup(func() {
		c.Close()
		server.Stop()
	})
	return c, server
}

func TestEventKindJSON(t *testing.T) {
	raw, err := json.Marshal(&CommitmentEvent{Kind: Rejected, Height: 5, Reason: "bad root"})
	require.Nil(t, err)
	assert.JSONEq(t, `{"kind":"rejected","height":5,"reason":"bad root"}`, string(raw))

	ev := &CommitmentEvent{}
	require.Nil(t, json.Unmarshal([]byte(`{"kind":"accepted","height":9}`), ev))
	assert.Equal(t, Accepted, ev.Kind)
	assert.EqualValues(t, 9, ev.Height)

	assert.NotNil(t, json.Unmarshal([]byte(`{"kind":"maybe"}`), ev))
}

func TestRPCClientPostAndSubscribe(t *testing.T) {
	api := newSettlementAPI()
	api.reject[20] = "state root mismatch"
	c, _ := newTestRPCClient(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := c.SubscribeEvents(ctx)
	require.Nil(t, err)

	for _, h := range []uint64{10, 20} {
		require.Nil(t, c.PostCommitment(ctx, &types.BlockCommitment{
			Height:     h,
			BlockID:    common.Hash{byte(h)},
			Commitment: common.Hash{0xaa, byte(h)},
		}))
	}

	var got []*CommitmentEvent
	for len(got) < 2 {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-time.After(3 * time.Second):
			t.Fatal("no settlement event")
		}
	}
	assert.Equal(t, &CommitmentEvent{Kind: Accepted, Height: 10}, got[0])
	assert.Equal(t, &CommitmentEvent{Kind: Rejected, Height: 20, Reason: "state root mismatch"}, got[1])

	api.lock.Lock()
	assert.Len(t, api.posted, 2)
	assert.Equal(t, common.Hash{0xaa, 20}, api.posted[1].Commitment)
	api.lock.Unlock()
}

func TestRPCClientSubscriptionGivesUp(t *testing.T) {
	c, server := newTestRPCClient(t, newSettlementAPI())
	server.Stop()

	events, err := c.SubscribeEvents(context.Background())
	require.Nil(t, err)
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("event channel not closed")
	}
}

func TestRPCClientResubscribesAfterEveryDrop(t *testing.T) {
	c, _ := newTestRPCClient(t, newSettlementAPI())
	var sessions atomic.Uint64
	c.subscribe = func(_ context.Context, ch chan *CommitmentEvent) (event.Subscription, error) {
		height := sessions.Inc()
		return event.NewSubscription(func(quit <-chan struct{}) error {
			select {
			case ch <- &CommitmentEvent{Kind: Accepted, Height: height}:
			case <-quit:
				return nil
			}
			return errors.New("connection reset by peer")
		}), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.SubscribeEvents(ctx)
	require.Nil(t, err)

	// every session delivers one event and drops, well past the retry count of 2
	for h := uint64(1); h <= 6; h++ {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event channel closed after %d sessions", h-1)
			assert.Equal(t, h, ev.Height)
		case <-time.After(3 * time.Second):
			t.Fatalf("no event from session %d", h)
		}
	}

	cancel()
	assert.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestRPCClientGivesUpOnFailedResubscribe(t *testing.T) {
	c, _ := newTestRPCClient(t, newSettlementAPI())
	var attempts atomic.Uint64
	c.subscribe = func(_ context.Context, ch chan *CommitmentEvent) (event.Subscription, error) {
		if attempts.Inc() > 1 {
			return nil, errors.New("connection refused")
		}
		return event.NewSubscription(func(quit <-chan struct{}) error {
			return errors.New("connection reset by peer")
		}), nil
	}

	events, err := c.SubscribeEvents(context.Background())
	require.Nil(t, err)
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("event channel not closed")
	}
	// one session plus a full retry budget of 2
	assert.EqualValues(t, 3, attempts.Load())
}

func TestMockClient(t *testing.T) {
	m := NewMockClient(true, logrus.New())
	events, err := m.SubscribeEvents(context.Background())
	require.Nil(t, err)

	require.Nil(t, m.PostCommitment(context.Background(), &types.BlockCommitment{Height: 3}))
	ev := <-events
	assert.Equal(t, Accepted, ev.Kind)
	assert.EqualValues(t, 3, ev.Height)

	m.Emit(&CommitmentEvent{Kind: Rejected, Height: 3, Reason: "manual"})
	ev = <-events
	assert.Equal(t, Rejected, ev.Kind)
	assert.Len(t, m.Posted(), 1)

	quiet := NewMockClient(false, logrus.New())
	require.Nil(t, quiet.PostCommitment(context.Background(), &types.BlockCommitment{Height: 1}))
	events, _ = quiet.SubscribeEvents(context.Background())
	select {
	case <-events:
		t.Fatal("unexpected event")
	default:
	}
}
