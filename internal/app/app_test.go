package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-da-node/internal/storagemgr"
	"github.com/axiomesh/axiom-da-node/pkg/crypto"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

func mockRepo(t *testing.T) *repo.Repo {
	rep := repo.MockRepo(t)
	rep.Config.Ulimit = 0
	rep.Config.Port.GRPC = 0
	return rep
}

func localAddr(lis net.Listener) string {
	return fmt.Sprintf("127.0.0.1:%d", lis.Addr().(*net.TCPAddr).Port)
}

func startSequencer(t *testing.T, trusted ...*crypto.Ed25519PrivateKey) *SequencerNode {
	rep := mockRepo(t)
	content := ""
	for _, k := range trusted {
		content += k.PublicKey().String() + "\n"
	}
	require.Nil(t, os.WriteFile(rep.WhitelistPath(), []byte(content), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	n, err := NewSequencerNode(rep, ctx, cancel)
	require.Nil(t, err)
	go func() {
		_ = n.Run()
	}()
	t.Cleanup(n.Stop)
	return n
}

func TestFullNodeFollowsSequencer(t *testing.T) {
	fullRep := mockRepo(t)
	fullRep.Config.Settlement.Enable = true
	fullRep.Config.Settlement.Type = repo.SettlementTypeMock
	fullRep.Config.Execution.PushState = true
	signer, err := crypto.LoadOrGenerateKeyFile(fullRep.SignerKeyPath())
	require.Nil(t, err)

	seq := startSequencer(t, signer)
	fullRep.Config.DA.URL = localAddr(seq.lis)

	ctx, cancel := context.WithCancel(context.Background())
	full, err := NewFullNode(fullRep, ctx, cancel)
	require.Nil(t, err)
	runErr := make(chan error, 1)
	go func() {
		runErr <- full.Run()
	}()

	txs := []*types.Transaction{{Data: []byte("a")}, {Data: []byte("b"), Nonce: 1}}
	ok, err := full.SubmitTransactions(context.Background(), txs)
	require.Nil(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		h := full.Health()
		return h.SyncedHeight >= 1 && h.FinalizedHeight >= 1 && h.InFlightTxs == 0
	}, 5*time.Second, 20*time.Millisecond)

	// the pushed state is attached to the stored block
	require.Eventually(t, func() bool {
		blk, err := seq.sequencer.Get(1)
		return err == nil && blk != nil && blk.NodeState != nil
	}, 5*time.Second, 20*time.Millisecond)
	blk, err := seq.sequencer.Get(1)
	require.Nil(t, err)
	assert.EqualValues(t, len(txs), blk.NodeState.LedgerVersion)

	// progress and executor state go through the read cache
	require.Len(t, full.stores, 2)
	for _, s := range full.stores {
		assert.IsType(t, &storagemgr.CachedStorage{}, s)
	}

	full.Stop()
	select {
	case err := <-runErr:
		assert.Nil(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("full node did not stop")
	}
	assert.Contains(t, full.Health().Status, "stopped")
}

func TestReplicaServesMirror(t *testing.T) {
	client, err := crypto.GenerateEd25519PrivateKey()
	require.Nil(t, err)

	replicaRep := mockRepo(t)
	replicaKey, err := crypto.LoadOrGenerateKeyFile(replicaRep.SignerKeyPath())
	require.Nil(t, err)
	require.Nil(t, os.WriteFile(replicaRep.WhitelistPath(), []byte(client.PublicKey().String()+"\n"), 0644))

	seq := startSequencer(t, client, replicaKey)
	replicaRep.Config.DA.URL = localAddr(seq.lis)

	ctx, cancel := context.WithCancel(context.Background())
	r, err := NewReplicaNode(replicaRep, ctx, cancel)
	require.Nil(t, err)
	go func() {
		_ = r.Run()
	}()
	t.Cleanup(r.Stop)

	// a full node reading from the replica submits through it as well
	fullRep := mockRepo(t)
	require.Nil(t, crypto.WriteKeyFile(fullRep.SignerKeyPath(), client))
	fullRep.Config.DA.URL = localAddr(r.lis)
	fctx, fcancel := context.WithCancel(context.Background())
	full, err := NewFullNode(fullRep, fctx, fcancel)
	require.Nil(t, err)
	go func() {
		_ = full.Run()
	}()
	t.Cleanup(full.Stop)

	ok, err := full.SubmitTransactions(context.Background(), []*types.Transaction{{Data: []byte("through replica")}})
	require.Nil(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		return r.Health().LatestHeight >= 1 && full.Health().SyncedHeight >= 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, ModeReplica, r.Health().Mode)
}

func TestNewUnknownMode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := New(Mode("light"), mockRepo(t), ctx, cancel)
	assert.NotNil(t, err)
}

func TestMonitor(t *testing.T) {
	m := NewMonitor(0, func() *Health {
		return &Health{Mode: ModeSequencer, Status: []string{}, LatestHeight: 42}
	}, logrus.New())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	h := &Health{}
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), h))
	assert.Equal(t, ModeSequencer, h.Mode)
	assert.EqualValues(t, 42, h.LatestHeight)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "axiom_da_")

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
