package executor

import (
	"github.com/pkg/errors"
)

var ErrExecutorBusy = errors.New("executor is taken by another execution")

// Handle owns a single Executor. Take removes it for the duration of one
// execution and Put gives it back, so at most one caller can use it at a time.
type Handle struct {
	slot chan Executor
}

func NewHandle(exec Executor) *Handle {
	h := &Handle{slot: make(chan Executor, 1)}
	h.slot <- exec
	return h
}

// Take returns ErrExecutorBusy while the executor is out.
func (h *Handle) Take() (Executor, error) {
	select {
	case exec := <-h.slot:
		return exec, nil
	default:
		return nil, ErrExecutorBusy
	}
}

func (h *Handle) Put(exec Executor) {
	select {
	case h.slot <- exec:
	default:
		panic("executor handle: put without take")
	}
}

// Busy reports whether the executor is currently taken.
func (h *Handle) Busy() bool {
	return len(h.slot) == 0
}
