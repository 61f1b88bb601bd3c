package status

import (
	"go.uber.org/atomic"
)

type StatusType uint32

const (
	// Connected is on while an upstream DA stream is open.
	Connected StatusType = iota
	Syncing
	Executing
	Settling
	Stopped
)

var statusNames = map[StatusType]string{
	Connected: "connected",
	Syncing:   "syncing",
	Executing: "executing",
	Settling:  "settling",
	Stopped:   "stopped",
}

type StatusMgr struct {
	atomicStatus *atomic.Uint32
}

func NewStatusMgr() *StatusMgr {
	return &StatusMgr{
		atomicStatus: atomic.NewUint32(0),
	}
}

// turn on a status
func (st *StatusMgr) On(statusPos ...StatusType) {
	for _, pos := range statusPos {
		st.atomicSetBit(pos)
	}
}

func (st *StatusMgr) atomicSetBit(position StatusType) {
	for {
		oldStatus := st.atomicStatus.Load()
		if st.atomicStatus.CompareAndSwap(oldStatus, oldStatus|(1<<position)) {
			break
		}
	}
}

// turn off a status
func (st *StatusMgr) Off(status ...StatusType) {
	for _, pos := range status {
		st.atomicClearBit(pos)
	}
}

func (st *StatusMgr) atomicClearBit(position StatusType) {
	for {
		oldStatus := st.atomicStatus.Load()
		if st.atomicStatus.CompareAndSwap(oldStatus, oldStatus&^(1<<position)) {
			break
		}
	}
}

// In returns the atomic status of specified position.
func (st *StatusMgr) In(pos StatusType) bool {
	return st.atomicStatus.Load()&(1<<pos) > 0
}

func (st *StatusMgr) InOne(poss ...StatusType) bool {
	for _, pos := range poss {
		if st.In(pos) {
			return true
		}
	}
	return false
}

// Names lists the names of every status currently on.
func (st *StatusMgr) Names() []string {
	var names []string
	for pos := Connected; pos <= Stopped; pos++ {
		if st.In(pos) {
			names = append(names, statusNames[pos])
		}
	}
	return names
}

func (st *StatusMgr) Reset() {
	st.atomicStatus.Store(0)
}
