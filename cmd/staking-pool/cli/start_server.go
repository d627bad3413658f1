package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stakepool-labs/staking-pool/internal/clients/tokenclient"
	"github.com/stakepool-labs/staking-pool/internal/config"
	"github.com/stakepool-labs/staking-pool/internal/db"
	dbmodel "github.com/stakepool-labs/staking-pool/internal/db/model"
	"github.com/stakepool-labs/staking-pool/internal/observability/metrics"
	"github.com/stakepool-labs/staking-pool/internal/observability/tracing"
	"github.com/stakepool-labs/staking-pool/internal/pool"
	"github.com/stakepool-labs/staking-pool/internal/queue"
	"github.com/stakepool-labs/staking-pool/internal/services"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the staking pool server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	var dbClient db.DbInterface
	if cfg.Db.InMemory {
		log.Warn().Msg("Using the in-memory store, ledger state will not survive a restart")
		dbClient = db.NewMemDatabase()
	} else {
		if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
			log.Fatal().Err(err).Msg("error while setting up staking pool db model")
		}

		// create new db client
		dbClient, err = db.New(ctx, cfg.Db)
		if err != nil {
			log.Fatal().Err(err).Msg("error while creating db client")
		}
		dbClient = db.NewDbWithMetrics(dbClient)
	}

	fee, err := cfg.Pool.Fee()
	if err != nil {
		log.Fatal().Err(err).Msg("error while parsing registration fee")
	}
	stakingPool := pool.New(dbClient, fee, nil)

	var tokenClient tokenclient.TokenInterface
	tokenClient = tokenclient.NewTokenClient(&cfg.Token)
	tokenClient = tokenclient.NewTokenClientWithMetrics(tokenClient)

	qm, err := queue.NewQueueManager(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating queue manager")
	}
	defer qm.Shutdown()

	service := services.NewService(cfg, dbClient, stakingPool, tokenClient, qm)

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	return service.StartPoolService(ctx)
}
