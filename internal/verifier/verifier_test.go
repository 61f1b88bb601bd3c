package verifier

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/axiomesh/axiom-da-node/pkg/types"
)

func state(h, ts, ver uint64) *types.ExecutionState {
	return &types.ExecutionState{BlockHeight: h, LedgerTimestamp: ts, LedgerVersion: ver}
}

func TestValidate(t *testing.T) {
	v := New(logrus.New())

	assert.False(t, v.Validate(state(1, 100, 1)), "absent height must not validate")
	assert.False(t, v.Validate(nil))

	v.AddState(state(1, 100, 1))
	assert.True(t, v.Has(1))
	assert.True(t, v.Validate(state(1, 100, 1)))
	assert.False(t, v.Validate(state(1, 100, 2)))
	assert.False(t, v.Validate(state(1, 101, 1)))
}

func TestAddStateFirstWins(t *testing.T) {
	v := New(logrus.New())
	v.AddState(state(5, 10, 3))
	v.AddState(state(5, 11, 4))
	v.AddState(nil)

	assert.Equal(t, 1, v.Size())
	assert.True(t, v.Validate(state(5, 10, 3)))
	assert.False(t, v.Validate(state(5, 11, 4)))
}

func TestAddStateCopies(t *testing.T) {
	v := New(logrus.New())
	s := state(2, 20, 2)
	v.AddState(s)
	s.LedgerVersion = 99
	assert.True(t, v.Validate(state(2, 20, 2)))
}

func TestPrune(t *testing.T) {
	v := New(logrus.New())
	for h := uint64(1); h <= 10; h++ {
		v.AddState(state(h, h*10, h))
	}
	assert.Equal(t, 4, v.Prune(5))
	assert.Equal(t, 6, v.Size())
	assert.False(t, v.Has(4))
	assert.True(t, v.Has(5))
	assert.Equal(t, 0, v.Prune(5))
}
