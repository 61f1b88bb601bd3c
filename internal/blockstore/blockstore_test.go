package blockstore

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-da-node/api/sequencerpb"
	"github.com/axiomesh/axiom-da-node/internal/storagemgr/kv"
)

func TestStore(t *testing.T) {
	s, err := New(kv.NewMemory(), 1, logrus.New())
	require.Nil(t, err)

	_, ok := s.Latest()
	assert.False(t, ok)

	require.NotNil(t, s.Put(&sequencerpb.BlockV1{Height: 0}))

	for h := uint64(1); h <= 3; h++ {
		require.Nil(t, s.Put(&sequencerpb.BlockV1{Height: h, BlockID: []byte{byte(h)}, Data: []byte("data")}))
	}
	latest, ok := s.Latest()
	assert.True(t, ok)
	assert.EqualValues(t, 3, latest)

	err = s.Put(&sequencerpb.BlockV1{Height: 5})
	assert.ErrorIs(t, err, ErrNonConsecutive)

	b, err := s.Get(2)
	require.Nil(t, err)
	require.NotNil(t, b)
	assert.Equal(t, []byte{2}, b.BlockID)
	assert.Nil(t, b.NodeState)

	b, err = s.Get(4)
	require.Nil(t, err)
	assert.Nil(t, b)
}

func TestStoreReopen(t *testing.T) {
	p := filepath.Join(t.TempDir(), "blocks")
	db, err := kv.NewLeveldb(p, nil, false)
	require.Nil(t, err)
	s, err := New(db, 1, logrus.New())
	require.Nil(t, err)
	require.Nil(t, s.Put(&sequencerpb.BlockV1{Height: 7, Data: []byte("x")}))
	require.Nil(t, s.Close())

	db, err = kv.NewLeveldb(p, nil, false)
	require.Nil(t, err)
	s, err = New(db, 1, logrus.New())
	require.Nil(t, err)
	defer s.Close()

	latest, ok := s.Latest()
	assert.True(t, ok)
	assert.EqualValues(t, 7, latest)

	b, err := s.Get(7)
	require.Nil(t, err)
	assert.Equal(t, []byte("x"), b.Data)
}
