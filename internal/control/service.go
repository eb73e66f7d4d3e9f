// Package control wires the service together: storage backend selection,
// migrations, optional redis, the classifier tier, the remediation
// orchestrator, and the HTTP server.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/Balaji2106/demo-autoremediation/internal/api"
	"github.com/Balaji2106/demo-autoremediation/internal/classify"
	"github.com/Balaji2106/demo-autoremediation/internal/core/config"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/ai"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/playbook"
	redisclient "github.com/Balaji2106/demo-autoremediation/internal/infra/redis"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage/memory"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage/postgres"
	"github.com/Balaji2106/demo-autoremediation/internal/ingest"
	"github.com/Balaji2106/demo-autoremediation/internal/remedy"
)

// Service is the assembled application.
type Service struct {
	cfg         *config.AppConfig
	db          *postgres.DB
	redisClient *redisclient.Client
	ingest      *ingest.Service
	audit       storage.AuditRepository
	httpServer  *api.Server
	log         *slog.Logger
}

// NewService creates a Service with all dependencies initialized.
func NewService(cfg *config.AppConfig) (*Service, error) {
	log := slog.Default()

	// 1. Initialize Storage
	var ticketRepo storage.TicketRepository
	var auditRepo storage.AuditRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations
		// Note: Goose needs direct *sql.DB which sqlx.DB wraps
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		ticketRepo = postgres.NewTicketRepo(db)
		auditRepo = postgres.NewAuditRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewStore()
		ticketRepo = memory.NewTicketRepo(store)
		auditRepo = memory.NewAuditRepo(store)
		log.Info("Using Memory storage")
	}

	// 2. Initialize Redis (optional, dedup fast path + ticket broadcast)
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, continuing without it", "error", err)
			redisClient = nil
		}
	}

	// 3. Initialize Classifier tier
	provider, err := ai.New(cfg.AI)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			return nil, fmt.Errorf("failed to init AI provider: %w", err)
		}
		log.Warn("No AI provider configured, classification uses keyword fallback only")
	}
	classifier := classify.New(provider, cfg.AI.Timeout, log)

	// 4. Initialize Remediation
	policy := remedy.DefaultPolicy()
	playbookClient := playbook.NewClient(cfg.Playbooks)
	orchestrator := remedy.NewOrchestrator(policy, ticketRepo, auditRepo, playbookClient, log)

	// 5. Initialize Ingest pipeline
	ingestSvc := ingest.NewService(
		ticketRepo,
		auditRepo,
		classifier,
		orchestrator,
		policy,
		redisClient,
		cfg.Remediation.DedupWindow,
		cfg.Remediation.Enabled,
		log,
	)

	// 6. Initialize HTTP server
	httpServer := api.NewServer(
		api.Config{Port: cfg.Server.Port, APIKey: cfg.Server.APIKey},
		ingestSvc,
		ticketRepo,
		auditRepo,
		log,
	)

	return &Service{
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
		ingest:      ingestSvc,
		audit:       auditRepo,
		httpServer:  httpServer,
		log:         log,
	}, nil
}

// Start starts background collectors and the HTTP server. It returns
// immediately; the caller owns shutdown via Stop.
func (s *Service) Start(ctx context.Context) error {
	if s.db != nil {
		s.db.StartMetricsCollector(ctx)
	}

	go func() {
		if err := s.httpServer.Start(); err != nil {
			s.log.Error("HTTP server failed", "error", err)
		}
	}()

	return nil
}

// Stop drains in-flight remediation and shuts everything down.
func (s *Service) Stop(ctx context.Context) error {
	s.log.Info("Stopping service...")

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Warn("Failed to stop HTTP server", "error", err)
	}

	s.ingest.Drain()

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close Redis", "error", err)
		}
	}

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Stats exposes remediation ledger aggregation for the CLI.
func (s *Service) Stats(ctx context.Context, days int) (*remedy.Stats, error) {
	return remedy.CollectStats(ctx, s.audit, days)
}
