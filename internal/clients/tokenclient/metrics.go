package tokenclient

import (
	"context"
	"time"

	"github.com/stakepool-labs/staking-pool/internal/observability/metrics"
)

type tokenClientWithMetrics struct {
	token TokenInterface
}

func NewTokenClientWithMetrics(token TokenInterface) *tokenClientWithMetrics {
	return &tokenClientWithMetrics{token: token}
}

func (t *tokenClientWithMetrics) Transfer(ctx context.Context, cmd TransferCommand) error {
	start := time.Now()
	err := t.token.Transfer(ctx, cmd)
	metrics.ObserveTokenClientLatency("Transfer", time.Since(start), err != nil)
	return err
}
