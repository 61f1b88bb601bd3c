package app

import (
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-da-node/pkg/events"
)

func (n *FullNode) listenExecutedBlock() {
	executedCh := make(chan events.ExecutedEvent, 64)
	sub := n.task.SubscribeExecutedEvent(executedCh)
	defer sub.Unsubscribe()

	for {
		select {
		case <-n.Ctx.Done():
			return
		case err := <-sub.Err():
			if err != nil {
				n.logger.WithError(err).Warn("Executed event subscription ended")
			}
			return
		case ev := <-executedCh:
			n.reportBlock(ev)
		}
	}
}

func (n *FullNode) reportBlock(ev events.ExecutedEvent) {
	n.lastExecuted.Store(ev.Block.Height)
	n.logger.WithFields(logrus.Fields{
		"height":         ev.Block.Height,
		"txs":            len(ev.Block.Transactions),
		"ledger_version": ev.State.LedgerVersion,
		"commitment":     ev.Commitment.Commitment,
	}).Debug("Report executed block")
}
