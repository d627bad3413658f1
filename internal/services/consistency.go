package services

import (
	"context"
	"math/big"

	"github.com/rs/zerolog/log"

	"github.com/stakepool-labs/staking-pool/internal/observability/metrics"
)

// checkConsistency recomputes the ledger aggregates and exports them as
// gauges. With no transfer pending, the ledger total and the vault sum must
// agree; a persistent gap is an invariant violation worth alerting on.
func (s *Service) checkConsistency(ctx context.Context) error {
	snapshot, err := s.pool.CheckConsistency(ctx)
	if err != nil {
		return err
	}

	total, _ := new(big.Float).SetInt(snapshot.Total.BigInt()).Float64()
	stakedSum, _ := new(big.Float).SetInt(snapshot.StakedSum.BigInt()).Float64()
	metrics.RecordConsistencySnapshot(
		total,
		stakedSum,
		snapshot.Registered,
		snapshot.VaultCount,
		snapshot.PendingTransfers,
	)

	if !snapshot.Total.Equal(snapshot.StakedSum) && snapshot.PendingTransfers == 0 {
		log.Ctx(ctx).Error().
			Str("total", snapshot.Total.String()).
			Str("stakedSum", snapshot.StakedSum.String()).
			Msg("Ledger total diverged from vault sum with no transfer pending")
	}
	return nil
}
