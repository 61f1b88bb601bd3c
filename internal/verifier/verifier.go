package verifier

import (
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/pkg/types"
)

// StateVerifier holds the execution states reported by the DA sequencer and
// checks locally computed states against them.
type StateVerifier struct {
	states cmap.ConcurrentMap[uint64, *types.ExecutionState]
	logger logrus.FieldLogger
}

func shardHeight(height uint64) uint32 {
	return uint32(height ^ (height >> 32))
}

func New(logger logrus.FieldLogger) *StateVerifier {
	return &StateVerifier{
		states: cmap.NewWithCustomShardingFunction[uint64, *types.ExecutionState](shardHeight),
		logger: logger,
	}
}

// AddState records a reported state. The first report for a height wins.
func (v *StateVerifier) AddState(state *types.ExecutionState) {
	if state == nil {
		return
	}
	cp := *state
	if v.states.SetIfAbsent(state.BlockHeight, &cp) {
		recordedStateGauge.Set(float64(v.states.Count()))
		return
	}
	if existing, ok := v.states.Get(state.BlockHeight); ok && !existing.Equal(state) {
		v.logger.WithFields(logrus.Fields{
			"height":   state.BlockHeight,
			"recorded": existing.String(),
			"reported": state.String(),
		}).Warn("Ignore conflicting reported state")
	}
}

// Validate reports whether local matches the state recorded for its height.
// An unknown height does not validate.
func (v *StateVerifier) Validate(local *types.ExecutionState) bool {
	if local == nil {
		return false
	}
	recorded, ok := v.states.Get(local.BlockHeight)
	if !ok {
		validateCounter.WithLabelValues("absent").Inc()
		return false
	}
	if !recorded.Equal(local) {
		validateCounter.WithLabelValues("mismatch").Inc()
		v.logger.WithFields(logrus.Fields{
			"height":   local.BlockHeight,
			"recorded": recorded.String(),
			"local":    local.String(),
		}).Error("State mismatch")
		return false
	}
	validateCounter.WithLabelValues("match").Inc()
	return true
}

func (v *StateVerifier) Has(height uint64) bool {
	return v.states.Has(height)
}

// Prune drops every recorded state below the given height.
func (v *StateVerifier) Prune(below uint64) int {
	pruned := 0
	for _, h := range v.states.Keys() {
		if h < below {
			v.states.Remove(h)
			pruned++
		}
	}
	recordedStateGauge.Set(float64(v.states.Count()))
	return pruned
}

func (v *StateVerifier) Size() int {
	return v.states.Count()
}
