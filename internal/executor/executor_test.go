package executor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/mock/gomock"

	"github.com/axiomesh/axiom-da-node/internal/executor/mock_executor"
)

func TestHandleIsExclusive(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mock_executor.NewMockExecutor(ctrl)
	h := NewHandle(exec)
	assert.False(t, h.Busy())

	taken, err := h.Take()
	require.Nil(t, err)
	assert.Equal(t, exec, taken)
	assert.True(t, h.Busy())

	_, err = h.Take()
	assert.ErrorIs(t, err, ErrExecutorBusy)

	h.Put(taken)
	assert.False(t, h.Busy())
	assert.Panics(t, func() {
		h.Put(taken)
	})
}

func TestHandleConcurrentTake(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewHandle(mock_executor.NewMockExecutor(ctrl))

	var (
		wg       sync.WaitGroup
		inside   = atomic.NewInt32(0)
		maxSeen  = atomic.NewInt32(0)
		attempts = 64
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exec, err := h.Take()
			if err != nil {
				return
			}
			n := inside.Inc()
			for {
				m := maxSeen.Load()
				if n <= m || maxSeen.CompareAndSwap(m, n) {
					break
				}
			}
			inside.Dec()
			h.Put(exec)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, maxSeen.Load())
}

func TestInFlightCounter(t *testing.T) {
	c := NewInFlightCounter()
	assert.EqualValues(t, 10, c.Add(10))
	assert.EqualValues(t, 6, c.Release(4))
	assert.EqualValues(t, 0, c.Release(100))
	assert.EqualValues(t, 0, c.Load())
}
