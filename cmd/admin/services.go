package main

import (
	"context"
	"fmt"
	"os"

	ledgerservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/application"
	ledgerdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/ledger/infrastructure/repositories"
	questionbankservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/application"
	questionbankdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/infrastructure/repositories"
	rewardservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/application"
	rewarddb "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/infrastructure/repositories"
	tournamentservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application"
	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/config"
	"github.com/Black-And-White-Club/trivia-ledger/db/bundb"
	"github.com/Black-And-White-Club/trivia-ledger/internal/clock"
	"github.com/Black-And-White-Club/trivia-ledger/internal/metrics"
	"github.com/Black-And-White-Club/trivia-ledger/internal/observability"
	"github.com/Black-And-White-Club/trivia-ledger/internal/signing"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

// services bundles the program services the commands call directly, bypassing the bus.
type services struct {
	cfg          *config.Config
	db           *bun.DB
	signer       string
	ledger       ledgerservice.Service
	questionBank questionbankservice.Service
	tournaments  tournamentservice.Service
	rewards      rewardservice.Service
}

func (s *services) Close() error {
	return s.db.Close()
}

// signerFromContext resolves the signing account from the --seed flag.
func signerFromContext(c *cli.Context) (string, error) {
	seed := c.String("seed")
	if seed == "" {
		return "", fmt.Errorf("a signing seed is required (--seed or TRIVIA_ADMIN_SEED)")
	}
	_, pub, err := signing.FromSeed(seed)
	if err != nil {
		return "", fmt.Errorf("invalid seed: %w", err)
	}
	return pub, nil
}

func openServices(c *cli.Context) (*services, error) {
	signer, err := signerFromContext(c)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newServices(c.Context, cfg, signer)
}

func newServices(ctx context.Context, cfg *config.Config, signer string) (*services, error) {
	obs := observability.New(config.ToObsConfig(cfg), os.Stderr)
	logger := obs.Logger.With("component", "admin")
	opMetrics := metrics.NewNoop()

	db, err := bundb.Open(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return nil, err
	}

	ledgerRepo := ledgerdb.NewRepository(db)
	qb := questionbankservice.NewQuestionBankService(questionbankdb.NewRepository(db), logger, opMetrics, obs.Tracer("questionbank"), db, clock.RealClock{}, questionbankservice.Config{
		MinSubmitReputation: cfg.QuestionBank.MinSubmitReputation,
	})

	return &services{
		cfg:          cfg,
		db:           db,
		signer:       signer,
		ledger:       ledgerservice.NewLedgerService(ledgerRepo, logger, opMetrics, obs.Tracer("ledger"), db, cfg.Ledger.MintAuthority),
		questionBank: qb,
		tournaments: tournamentservice.NewTournamentService(tournamentdb.NewRepository(db), ledgerRepo, qb, logger, opMetrics, obs.Tracer("tournament"), db, clock.RealClock{}, tournamentservice.Config{
			Asset:                 cfg.Ledger.NativeAsset,
			MinParticipants:       cfg.Tournament.MinParticipants,
			RequireQuestionSupply: cfg.Tournament.RequireQuestionSupply,
		}),
		rewards: rewardservice.NewRewardService(rewarddb.NewRepository(db), ledgerRepo, logger, opMetrics, obs.Tracer("reward"), db, clock.RealClock{}, rewardservice.Config{
			NativeAsset:           cfg.Ledger.NativeAsset,
			DefaultPlatformFeeBps: cfg.Reward.DefaultPlatformFeeBps,
		}),
	}, nil
}
