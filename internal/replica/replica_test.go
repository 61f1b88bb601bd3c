package replica

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/axiomesh/axiom-da-node/internal/batchauth"
	"github.com/axiomesh/axiom-da-node/internal/blockstore"
	"github.com/axiomesh/axiom-da-node/internal/daclient"
	"github.com/axiomesh/axiom-da-node/internal/daserver"
	"github.com/axiomesh/axiom-da-node/internal/sequencer"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

const testHeartbeat = 100 * time.Millisecond

func genKey(t *testing.T) *crypto.Ed25519PrivateKey {
	k, err := crypto.GenerateEd25519PrivateKey()
	require.Nil(t, err)
	return k
}

func newStore(t *testing.T) *blockstore.Store {
	s, err := blockstore.New(kv.NewMemory(), 1, logrus.New())
	require.Nil(t, err)
	return s
}

func serve(t *testing.T, blocks daserver.BlockSource, b *daserver.Broadcaster, h daserver.Handler) (*daserver.Server, *bufconn.Listener, <-chan error) {
	srv := daserver.New(repo.Server{SubscriberBufferSize: 64}, blocks, b, h, logrus.New())
	lis := bufconn.Listen(1 << 20)
	errC := srv.Start(lis)
	t.Cleanup(func() {
		srv.Stop(time.Second)
	})
	return srv, lis, errC
}

func connect(t *testing.T, lis *bufconn.Listener, heartbeat time.Duration) *daclient.Client {
	c, err := daclient.TryConnect(context.Background(), "bufnet", heartbeat, logrus.New(),
		daclient.WithRetry(2, 10*time.Millisecond),
		daclient.WithDialTimeout(time.Second),
		daclient.WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		})),
	)
	require.Nil(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

type primary struct {
	seq    *sequencer.Sequencer
	server *daserver.Server
	lis    *bufconn.Listener
}

// newPrimary starts a sequencer server trusting keys. Blocks are only sealed
// and heartbeats only sent when run is set.
func newPrimary(t *testing.T, run bool, keys ...*crypto.Ed25519PrivateKey) *primary {
	w := batchauth.NewWhitelist(logrus.New())
	for _, k := range keys {
		w.Add(k.PublicKey())
	}
	b := daserver.NewBroadcaster(64, logrus.New())
	seq, err := sequencer.New(repo.Sequencer{
		BlockInterval:  repo.Duration(20 * time.Millisecond),
		MaxBlockTxs:    16,
		StateCacheSize: 16,
	}, testHeartbeat/4, newStore(t), b, batchauth.NewVerifier(w, logrus.New()), logrus.New())
	require.Nil(t, err)
	srv, lis, _ := serve(t, seq, b, seq)
	if run {
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		go func() {
			_ = seq.Run(ctx)
		}()
	}
	return &primary{seq: seq, server: srv, lis: lis}
}

func sealBlock(t *testing.T, seq *sequencer.Sequencer, key *crypto.Ed25519PrivateKey, data string) {
	frame, err := batchauth.SignTransactions(key, []*types.Transaction{{Data: []byte(data)}})
	require.Nil(t, err)
	ok, err := seq.HandleBatch(context.Background(), frame)
	require.Nil(t, err)
	require.True(t, ok)
	blk, err := seq.Seal()
	require.Nil(t, err)
	require.NotNil(t, blk)
}

type replicaEnv struct {
	replica *Replica
	store   *blockstore.Store
	lis     *bufconn.Listener
	serverC <-chan error
	done    chan error
	cancel  context.CancelFunc
}

func startReplica(t *testing.T, upstream Upstream, store *blockstore.Store, signer *crypto.Ed25519PrivateKey, serverErr <-chan error, trusted ...*crypto.Ed25519PrivateKey) *replicaEnv {
	w := batchauth.NewWhitelist(logrus.New())
	for _, k := range trusted {
		w.Add(k.PublicKey())
	}
	b := daserver.NewBroadcaster(64, logrus.New())
	r, err := New(Config{HeartbeatInterval: testHeartbeat / 4, ForwardPoolSize: 4}, upstream, store, b, batchauth.NewVerifier(w, logrus.New()), signer, logrus.New())
	require.Nil(t, err)
	_, lis, srvErr := serve(t, store, b, r)
	if serverErr == nil {
		serverErr = srvErr
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	env := &replicaEnv{replica: r, store: store, lis: lis, done: make(chan error, 1), cancel: cancel}
	go func() {
		env.done <- r.Run(ctx, serverErr)
	}()
	return env
}

func (e *replicaEnv) waitExit(t *testing.T) error {
	select {
	case err := <-e.done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("replica did not exit")
		return nil
	}
}

func TestMirrorAndForward(t *testing.T) {
	client, replicaKey := genKey(t), genKey(t)
	up := newPrimary(t, true, client, replicaKey)
	env := startReplica(t, connect(t, up.lis, testHeartbeat), newStore(t), replicaKey, nil, client)

	down := connect(t, env.lis, testHeartbeat)
	tx := &types.Transaction{Data: []byte("via replica")}
	frame, err := batchauth.SignTransactions(client, []*types.Transaction{tx})
	require.Nil(t, err)
	ok, err := down.BatchWrite(context.Background(), frame)
	require.Nil(t, err)
	require.True(t, ok)

	stream, _, err := down.StreamReadFromHeight(context.Background(), 0)
	require.Nil(t, err)
	defer stream.Close()
	select {
	case blk, ok := <-stream.C():
		require.True(t, ok, "stream ended: %v", stream.Err())
		assert.EqualValues(t, 1, blk.Height)
		decoded, err := blk.Decode()
		require.Nil(t, err)
		require.Len(t, decoded.Transactions, 1)
		assert.Equal(t, tx.Hash(), decoded.Transactions[0].Hash())
	case <-time.After(3 * time.Second):
		t.Fatal("forwarded batch never came back as a block")
	}

	latest, ok := env.store.Latest()
	assert.True(t, ok)
	assert.EqualValues(t, 1, latest)

	env.cancel()
	assert.Nil(t, env.waitExit(t))
}

func TestResumeFromPersistedHeight(t *testing.T) {
	client := genKey(t)
	up := newPrimary(t, false, client)
	sealBlock(t, up.seq, client, "one")
	sealBlock(t, up.seq, client, "two")

	store := newStore(t)
	first, err := up.seq.Get(1)
	require.Nil(t, err)
	require.Nil(t, store.Put(first))

	env := startReplica(t, connect(t, up.lis, time.Minute), store, genKey(t), nil)
	require.Eventually(t, func() bool {
		latest, _ := store.Latest()
		return latest == 2
	}, 3*time.Second, 10*time.Millisecond)

	select {
	case err := <-env.done:
		t.Fatalf("replica exited: %v", err)
	case <-time.After(2 * testHeartbeat):
	}
}

func TestExitOnUpstreamClosed(t *testing.T) {
	up := newPrimary(t, true)
	env := startReplica(t, connect(t, up.lis, time.Minute), newStore(t), genKey(t), nil)
	time.Sleep(50 * time.Millisecond)

	up.server.Stop(time.Second)
	assert.ErrorIs(t, env.waitExit(t), ErrUpstreamClosed)
}

func TestExitOnHeartbeatLoss(t *testing.T) {
	// the primary never runs, so it never sends a heartbeat
	up := newPrimary(t, false)
	env := startReplica(t, connect(t, up.lis, 50*time.Millisecond), newStore(t), genKey(t), nil)
	assert.ErrorIs(t, env.waitExit(t), ErrHeartbeatTimeout)
}

func TestExitOnServerFailure(t *testing.T) {
	up := newPrimary(t, true)
	serverErr := make(chan error, 1)
	env := startReplica(t, connect(t, up.lis, time.Minute), newStore(t), genKey(t), serverErr)

	serverErr <- errors.New("listener closed")
	assert.ErrorIs(t, env.waitExit(t), ErrServerFailed)
}

func TestRefuseBatches(t *testing.T) {
	client, replicaKey := genKey(t), genKey(t)
	up := newPrimary(t, true, client, replicaKey)
	env := startReplica(t, connect(t, up.lis, time.Minute), newStore(t), replicaKey, nil, client)

	stranger := genKey(t)
	frame, err := batchauth.SignTransactions(stranger, []*types.Transaction{{Data: []byte("x")}})
	require.Nil(t, err)
	ok, err := env.replica.HandleBatch(context.Background(), frame)
	assert.ErrorIs(t, err, batchauth.ErrNotWhitelisted)
	assert.False(t, ok)

	frame, err = batchauth.SignTransactions(client, []*types.Transaction{{Data: []byte("x")}})
	require.Nil(t, err)
	forwarded, err := batchauth.CoSign(client, frame)
	require.Nil(t, err)
	ok, err = env.replica.HandleBatch(context.Background(), forwarded)
	assert.ErrorIs(t, err, batchauth.ErrNestedForwarded)
	assert.False(t, ok)

	frame, err = batchauth.SignTransactions(client, nil)
	require.Nil(t, err)
	ok, err = env.replica.HandleBatch(context.Background(), frame)
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.False(t, ok)
}

func TestRelayState(t *testing.T) {
	client, node := genKey(t), genKey(t)
	up := newPrimary(t, false, client, node)
	sealBlock(t, up.seq, client, "one")
	env := startReplica(t, connect(t, up.lis, time.Minute), newStore(t), genKey(t), nil)

	down := connect(t, env.lis, time.Minute)
	state := &types.ExecutionState{BlockHeight: 1, LedgerTimestamp: 5, LedgerVersion: 1}
	ok, err := down.SendState(context.Background(), node, state)
	require.Nil(t, err)
	assert.True(t, ok)

	blk, err := up.seq.Get(1)
	require.Nil(t, err)
	require.NotNil(t, blk.NodeState)
	assert.True(t, state.Equal(blk.NodeState.ExecutionState()))
}
