package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/stakepool-labs/staking-pool/internal/clients/tokenclient"
	"github.com/stakepool-labs/staking-pool/internal/observability/metrics"
	"github.com/stakepool-labs/staking-pool/internal/pool"
)

// submitTransfer hands a dispatched transfer to the token service. The local
// debit already happened, so a submission that still fails after the client
// exhausted its retries is compensated right here, as if a failure
// notification had arrived. A nil request is a no-op.
func (s *Service) submitTransfer(ctx context.Context, req *pool.TransferRequest) {
	if req == nil {
		return
	}

	err := s.token.Transfer(ctx, tokenclient.TransferCommand{
		RequestID: req.ID,
		Recipient: req.Account,
		Amount:    req.Amount,
		Memo:      req.Memo,
	})
	if err == nil {
		log.Ctx(ctx).Debug().
			Str("requestId", req.ID).
			Str("kind", req.Kind.String()).
			Msg("Transfer submitted to token service")
		return
	}

	log.Ctx(ctx).Error().Err(err).
		Str("requestId", req.ID).
		Str("kind", req.Kind.String()).
		Str("recipient", req.Account).
		Msg("Transfer submission failed, compensating locally")

	if rerr := s.pool.Resolve(ctx, req.ID, pool.OutcomeFailure); rerr != nil {
		log.Ctx(ctx).Error().Err(rerr).
			Str("requestId", req.ID).
			Msg("Failed to compensate unsubmitted transfer")
		return
	}
	metrics.RecordTransferOutcome(req.Kind.String(), false)
}
