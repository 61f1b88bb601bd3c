package node

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/internal/settlement"
)

// handleEvent applies a settlement verdict. It reports whether the local head
// was reverted, in which case the block stream has to restart above it.
func (t *Task) handleEvent(ev *settlement.CommitmentEvent) (bool, error) {
	switch ev.Kind {
	case settlement.Accepted:
		if err := t.chainState.SetFinalizedHeight(ev.Height); err != nil {
			return false, errors.Wrapf(err, "advance finalized height to %d", ev.Height)
		}
		finalized, err := t.chainState.FinalizedHeight()
		if err == nil {
			finalizedHeightGauge.Set(float64(finalized))
		}
		t.logger.WithField("height", ev.Height).Debug("Commitment accepted")
		return false, nil

	case settlement.Rejected:
		return t.handleRejected(ev)

	default:
		t.logger.WithField("kind", ev.Kind).Warn("Ignore unknown commitment event")
		return false, nil
	}
}

func (t *Task) handleRejected(ev *settlement.CommitmentEvent) (bool, error) {
	head, _, err := t.chainState.SyncedHeight()
	if err != nil {
		return false, err
	}
	logger := t.logger.WithFields(logrus.Fields{
		"height": ev.Height,
		"head":   head,
		"reason": ev.Reason,
	})
	if ev.Height == 0 || ev.Height > head {
		logger.Info("Ignore rejected commitment above the local head")
		return false, nil
	}
	if t.cfg.AdminMode {
		logger.Warn("Commitment rejected, admin mode trusts local state")
		return false, nil
	}

	target := ev.Height - 1
	finalized, err := t.chainState.FinalizedHeight()
	if err != nil {
		return false, err
	}
	if target < finalized {
		logger.WithField("finalized", finalized).Error("Refuse to revert below the finalized height")
		return false, nil
	}

	exec, err := t.handle.Take()
	if err != nil {
		return false, err
	}
	defer t.handle.Put(exec)

	logger.WithField("target", target).Warn("Commitment rejected, revert local head")
	if err := exec.RevertToHeight(target); err != nil {
		return false, errors.Wrapf(err, "revert executor to %d", target)
	}
	if err := t.chainState.Rewind(target); err != nil {
		return false, errors.Wrapf(err, "rewind progress to %d", target)
	}
	syncedHeightGauge.Set(float64(target))
	revertCounter.Inc()
	return true, nil
}
