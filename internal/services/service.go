package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/stakepool-labs/staking-pool/internal/clients/tokenclient"
	"github.com/stakepool-labs/staking-pool/internal/config"
	"github.com/stakepool-labs/staking-pool/internal/db"
	"github.com/stakepool-labs/staking-pool/internal/pool"
	"github.com/stakepool-labs/staking-pool/internal/queue"
	"github.com/stakepool-labs/staking-pool/internal/utils/poller"
)

type Service struct {
	cfg          *config.Config
	db           db.DbInterface
	pool         *pool.Pool
	token        tokenclient.TokenInterface
	queueManager *queue.QueueManager
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	p *pool.Pool,
	token tokenclient.TokenInterface,
	qm *queue.QueueManager,
) *Service {
	return &Service{
		cfg:          cfg,
		db:           db,
		pool:         p,
		token:        token,
		queueManager: qm,
	}
}

// StartPoolService seeds the ledger, starts the outcome consumer and the
// consistency poller, then serves the HTTP API until the context is done.
func (s *Service) StartPoolService(ctx context.Context) error {
	if err := s.pool.Init(ctx, pool.Params{
		Owner:        s.cfg.Pool.Owner,
		StakingToken: s.cfg.Pool.StakingToken,
		Treasury:     s.cfg.Pool.Treasury,
		Returnable:   s.cfg.Pool.Returnable,
		ClosingDate:  s.cfg.Pool.ClosingDate,
	}); err != nil {
		return err
	}

	s.SubscribeToTransferOutcomes(ctx)
	s.StartConsistencyPoller(ctx)

	return s.startServer(ctx)
}

// StartConsistencyPoller periodically recomputes the ledger aggregates and
// publishes them as metrics.
func (s *Service) StartConsistencyPoller(ctx context.Context) {
	consistencyPoller := poller.NewPoller(
		s.cfg.Poller.ConsistencyPollingInterval,
		s.checkConsistency,
	)
	go consistencyPoller.Start(ctx)
}

// SubscribeToTransferOutcomes consumes outcome notifications from the queue
// and applies them to the pool.
func (s *Service) SubscribeToTransferOutcomes(ctx context.Context) {
	go func() {
		if err := s.queueManager.SubscribeOutcomes(ctx, s.processOutcomeNotification); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Ctx(ctx).Fatal().Err(err).Msg("Outcome subscription terminated")
		}
	}()
}
