package chainstate

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-da-node/internal/storagemgr"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
)

func newTestChainState(t *testing.T) (*ChainState, kv.Storage) {
	store := kv.NewMemory()
	cs, err := New(store, 2, logrus.New())
	require.Nil(t, err)
	return cs, store
}

func TestSyncedHeight(t *testing.T) {
	cs, _ := newTestChainState(t)

	_, ok, err := cs.SyncedHeight()
	require.Nil(t, err)
	assert.False(t, ok)

	require.Nil(t, cs.SetSyncedHeight(0))
	h, ok, err := cs.SyncedHeight()
	require.Nil(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 0, h)

	require.Nil(t, cs.SetSyncedHeight(5))
	require.Nil(t, cs.SetSyncedHeight(5))
	err = cs.SetSyncedHeight(4)
	assert.ErrorIs(t, err, ErrHeightRegression)

	h, _, err = cs.SyncedHeight()
	require.Nil(t, err)
	assert.EqualValues(t, 5, h)
}

func TestFinalizedHeight(t *testing.T) {
	cs, _ := newTestChainState(t)

	h, err := cs.FinalizedHeight()
	require.Nil(t, err)
	assert.EqualValues(t, 0, h)

	require.Nil(t, cs.SetFinalizedHeight(10))
	require.Nil(t, cs.SetFinalizedHeight(3))
	h, err = cs.FinalizedHeight()
	require.Nil(t, err)
	assert.EqualValues(t, 10, h)
}

func TestExecutedSet(t *testing.T) {
	cs, store := newTestChainState(t)

	ids := []common.Hash{{1}, {2}, {3}, {4}}
	for i, id := range ids {
		executed, err := cs.IsExecuted(id)
		require.Nil(t, err)
		assert.False(t, executed)
		require.Nil(t, cs.MarkExecuted(uint64(i+1), id))
	}
	// duplicate mark is a no-op
	require.Nil(t, cs.MarkExecuted(1, ids[0]))

	// cache holds 2 entries, the rest come from storage
	for _, id := range ids {
		executed, err := cs.IsExecuted(id)
		require.Nil(t, err)
		assert.True(t, executed)
	}

	reopened, err := New(store, 2, logrus.New())
	require.Nil(t, err)
	executed, err := reopened.IsExecuted(ids[2])
	require.Nil(t, err)
	assert.True(t, executed)
}

func TestPruneExecuted(t *testing.T) {
	cs, _ := newTestChainState(t)

	for h := uint64(1); h <= 5; h++ {
		require.Nil(t, cs.MarkExecuted(h, common.Hash{byte(h)}))
	}
	require.Nil(t, cs.MarkExecuted(3, common.Hash{0x33}))

	pruned, err := cs.PruneExecuted(4)
	require.Nil(t, err)
	assert.Equal(t, 4, pruned)

	for _, id := range []common.Hash{{1}, {2}, {3}, {0x33}} {
		executed, err := cs.IsExecuted(id)
		require.Nil(t, err)
		assert.False(t, executed)
	}
	for _, id := range []common.Hash{{4}, {5}} {
		executed, err := cs.IsExecuted(id)
		require.Nil(t, err)
		assert.True(t, executed)
	}

	pruned, err = cs.PruneExecuted(4)
	require.Nil(t, err)
	assert.Equal(t, 0, pruned)
}

func TestRewind(t *testing.T) {
	cs, _ := newTestChainState(t)

	for h := uint64(1); h <= 6; h++ {
		require.Nil(t, cs.MarkExecuted(h, common.Hash{byte(h)}))
		require.Nil(t, cs.SetSyncedHeight(h))
	}
	require.Nil(t, cs.SetFinalizedHeight(2))

	err := cs.Rewind(1)
	assert.ErrorIs(t, err, ErrRewindFinalized)

	require.Nil(t, cs.Rewind(3))
	h, _, err := cs.SyncedHeight()
	require.Nil(t, err)
	assert.EqualValues(t, 3, h)

	for b := byte(1); b <= 6; b++ {
		executed, err := cs.IsExecuted(common.Hash{b})
		require.Nil(t, err)
		assert.Equal(t, b <= 3, executed, "height %d", b)
	}

	// forward progress resumes from the new head
	require.Nil(t, cs.SetSyncedHeight(4))

	// rewinding above the head does nothing
	require.Nil(t, cs.Rewind(10))
	h, _, err = cs.SyncedHeight()
	require.Nil(t, err)
	assert.EqualValues(t, 4, h)
}

func TestChainStateOverCachedStorage(t *testing.T) {
	raw := kv.NewMemory()
	store := storagemgr.NewCachedStorage(raw, 1)
	cs, err := New(store, 2, logrus.New())
	require.Nil(t, err)

	ids := []common.Hash{{1}, {2}, {3}, {4}}
	for i, id := range ids {
		h := uint64(i + 1)
		require.Nil(t, cs.MarkExecuted(h, id))
		require.Nil(t, cs.SetSyncedHeight(h))
	}
	require.Nil(t, cs.Rewind(2))
	n, err := cs.PruneExecuted(2)
	require.Nil(t, err)
	assert.Equal(t, 1, n)

	// the cache in front must agree with what reached the backing store
	for _, c := range []*ChainState{cs, mustChainState(t, store), mustChainState(t, raw)} {
		h, ok, err := c.SyncedHeight()
		require.Nil(t, err)
		assert.True(t, ok)
		assert.EqualValues(t, 2, h)
		for i, id := range ids {
			executed, err := c.IsExecuted(id)
			require.Nil(t, err)
			assert.Equal(t, i == 1, executed, "block %d", i+1)
		}
	}
}

func mustChainState(t *testing.T, store kv.Storage) *ChainState {
	cs, err := New(store, 2, logrus.New())
	require.Nil(t, err)
	return cs
}
