package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/stakepool-labs/staking-pool/internal/observability/metrics"
	"github.com/stakepool-labs/staking-pool/internal/pool"
	"github.com/stakepool-labs/staking-pool/internal/queue"
)

// processOutcomeNotification applies one outcome notification to the pool.
// Unknown request IDs are dropped: the queue redelivers at-least-once, so a
// second delivery of an already resolved transfer is expected. Malformed
// outcomes are dropped too, after bumping the receive error counter. Any
// other error is returned so the message is requeued.
func (s *Service) processOutcomeNotification(
	ctx context.Context, notification queue.OutcomeNotification,
) error {
	outcome := pool.Outcome(notification.Outcome)
	if outcome != pool.OutcomeSuccess && outcome != pool.OutcomeFailure {
		metrics.RecordQueueReceiveError()
		log.Ctx(ctx).Warn().
			Str("requestId", notification.RequestID).
			Str("outcome", notification.Outcome).
			Msg("Dropping notification with unknown outcome")
		return nil
	}

	// Read the kind before resolving; the request is gone afterwards.
	req, err := s.db.GetPendingTransfer(ctx, notification.RequestID)
	if err != nil {
		if errors.Is(err, pool.ErrTransferNotFound) {
			log.Ctx(ctx).Debug().
				Str("requestId", notification.RequestID).
				Msg("Ignoring outcome for unknown transfer, likely redelivered")
			return nil
		}
		return err
	}

	if err := s.pool.Resolve(ctx, notification.RequestID, outcome); err != nil {
		if errors.Is(err, pool.ErrTransferNotFound) {
			return nil
		}
		return err
	}

	metrics.RecordTransferOutcome(req.Kind.String(), outcome == pool.OutcomeSuccess)
	return nil
}
