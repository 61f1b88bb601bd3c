package sequencerpb

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-da-node/pkg/types"
)

func TestCodecBlockResponse(t *testing.T) {
	codec := Codec{}
	block := types.NewBlock(3, common.Hash{}, 100, []*types.Transaction{{Data: []byte("tx")}})
	b, err := NewBlockV1(block)
	require.Nil(t, err)

	raw, err := codec.Marshal(NewBlockResponse(b))
	require.Nil(t, err)
	resp := &StreamReadFromHeightResponse{}
	require.Nil(t, codec.Unmarshal(raw, resp))
	require.NotNil(t, resp.Response)
	assert.False(t, resp.Response.Heartbeat)
	require.NotNil(t, resp.Response.BlockV1)
	assert.Nil(t, resp.Response.BlockV1.NodeState)
	assert.EqualValues(t, 3, resp.Response.BlockV1.Height)
	assert.Equal(t, block.ID, resp.Response.BlockV1.ID())

	decoded, err := resp.Response.BlockV1.Decode()
	require.Nil(t, err)
	assert.Equal(t, block.ID, decoded.ID)

	raw, err = codec.Marshal(NewHeartbeatResponse())
	require.Nil(t, err)
	resp = &StreamReadFromHeightResponse{}
	require.Nil(t, codec.Unmarshal(raw, resp))
	assert.True(t, resp.Response.Heartbeat)
	assert.Nil(t, resp.Response.BlockV1)
}

func TestCodecNodeState(t *testing.T) {
	codec := Codec{}
	state := &types.ExecutionState{BlockHeight: 9, LedgerTimestamp: 8, LedgerVersion: 7}
	b := (&BlockV1{Height: 9}).WithNodeState(NodeStateFrom(state))

	raw, err := codec.Marshal(b)
	require.Nil(t, err)
	decoded := &BlockV1{}
	require.Nil(t, codec.Unmarshal(raw, decoded))
	require.NotNil(t, decoded.NodeState)
	assert.True(t, state.Equal(decoded.NodeState.ExecutionState()))

	req := &SendStateRequest{State: NodeStateFrom(state), VerifyingKey: []byte{1}, Signature: []byte{2}}
	raw, err = codec.Marshal(req)
	require.Nil(t, err)
	decodedReq := &SendStateRequest{}
	require.Nil(t, codec.Unmarshal(raw, decodedReq))
	assert.Equal(t, req, decodedReq)
}
