package dev

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
	"github.com/axiomesh/axiom-da-node/pkg/types"
)

func buildChain(n int) []*types.Block {
	var blocks []*types.Block
	parent := common.Hash{}
	for h := 1; h <= n; h++ {
		txs := []*types.Transaction{{Data: []byte{byte(h)}}, {Data: []byte{byte(h), 1}, Nonce: 1}}
		b := types.NewBlock(uint64(h), parent, uint64(h)*1000, txs)
		parent = b.ID
		blocks = append(blocks, b)
	}
	return blocks
}

func TestExecuteIsDeterministic(t *testing.T) {
	blocks := buildChain(5)

	run := func() []*types.BlockCommitment {
		exec, err := New(kv.NewMemory(), logrus.New())
		require.Nil(t, err)
		var out []*types.BlockCommitment
		for _, b := range blocks {
			c, s, err := exec.ExecuteBlock(context.Background(), b)
			require.Nil(t, err)
			assert.Equal(t, b.Height, s.BlockHeight)
			assert.Equal(t, b.Metadata.Timestamp, s.LedgerTimestamp)
			assert.Equal(t, b.Height*2, s.LedgerVersion)
			out = append(out, c)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestExecuteRejectsGap(t *testing.T) {
	exec, err := New(kv.NewMemory(), logrus.New())
	require.Nil(t, err)
	blocks := buildChain(3)

	_, _, err = exec.ExecuteBlock(context.Background(), blocks[1])
	assert.ErrorIs(t, err, ErrUnexpectedHeight)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = exec.ExecuteBlock(ctx, blocks[0])
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, exec.CurrentHeight())
}

func TestTimestampChangesCommitment(t *testing.T) {
	b := buildChain(1)[0]
	exec1, err := New(kv.NewMemory(), logrus.New())
	require.Nil(t, err)
	exec2, err := New(kv.NewMemory(), logrus.New())
	require.Nil(t, err)

	c1, _, err := exec1.ExecuteBlock(context.Background(), b)
	require.Nil(t, err)
	bumped := b.Clone()
	bumped.Metadata.Timestamp += 5000
	c2, s2, err := exec2.ExecuteBlock(context.Background(), bumped)
	require.Nil(t, err)

	assert.NotEqual(t, c1.Commitment, c2.Commitment)
	assert.Equal(t, b.ID, c2.BlockID)
	assert.Equal(t, bumped.Metadata.Timestamp, s2.LedgerTimestamp)
}

func TestRevertAndReload(t *testing.T) {
	store := kv.NewMemory()
	exec, err := New(store, logrus.New())
	require.Nil(t, err)
	blocks := buildChain(6)

	var commitments []*types.BlockCommitment
	for _, b := range blocks {
		c, _, err := exec.ExecuteBlock(context.Background(), b)
		require.Nil(t, err)
		commitments = append(commitments, c)
	}

	assert.NotNil(t, exec.RevertToHeight(7))
	require.Nil(t, exec.RevertToHeight(3))
	assert.EqualValues(t, 3, exec.CurrentHeight())
	_, err = exec.StateAt(4)
	assert.NotNil(t, err)

	// re-execution after revert reproduces the same chain
	c, _, err := exec.ExecuteBlock(context.Background(), blocks[3])
	require.Nil(t, err)
	assert.Equal(t, commitments[3], c)

	reloaded, err := New(store, logrus.New())
	require.Nil(t, err)
	assert.EqualValues(t, 4, reloaded.CurrentHeight())
	s, err := reloaded.StateAt(4)
	require.Nil(t, err)
	assert.EqualValues(t, 8, s.LedgerVersion)

	c, _, err = reloaded.ExecuteBlock(context.Background(), blocks[4])
	require.Nil(t, err)
	assert.Equal(t, commitments[4], c)

	require.Nil(t, reloaded.RevertToHeight(0))
	assert.EqualValues(t, 0, reloaded.CurrentHeight())
}
