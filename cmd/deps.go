package cmd

import (
	"fmt"

	"postcard-sync/core/account"
	"postcard-sync/core/config"
	"postcard-sync/core/database"
	"postcard-sync/core/logger"
	"postcard-sync/core/metrics"
	"postcard-sync/core/reconcile"
	"postcard-sync/core/remote"
	"postcard-sync/core/storage"
	"postcard-sync/feature/card"
	"postcard-sync/feature/integrity"
	"postcard-sync/feature/media"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps is the wired object graph shared by every command.
type deps struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	storage  storage.Client
	store    *card.Store
	resolver *media.Resolver
	service  *card.Service
}

// buildDeps loads configuration and wires the card service.
// reg receives the sync metrics; nil disables them.
func buildDeps(reg prometheus.Registerer) (*deps, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := card.NewStore(db)
	if err := store.Migrate(); err != nil {
		return nil, err
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	policy, err := reconcile.ParseConflictPolicy(cfg.Sync.ConflictPolicy)
	if err != nil {
		return nil, err
	}

	opts := []reconcile.Option{
		reconcile.WithLogger(l),
		reconcile.WithConflictPolicy(policy),
	}
	if reg != nil {
		rec, err := metrics.NewRecorder(reg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts, reconcile.WithMetrics(rec))
	}

	engine := reconcile.NewEngine(card.NewSchema(), store, remote.NewClient(cfg.Remote, "cards", l), opts...)
	resolver := media.NewResolver(client, cfg.Storage.Bucket, cfg.Storage.MediaPrefix, l)
	linker, err := card.NewLinker(cfg.Remote.BaseURL)
	if err != nil {
		return nil, err
	}
	svc := card.NewService(store, engine, account.NewStatic(cfg.Account), resolver, linker, cfg.Sync.UntitledText, l)

	return &deps{cfg: cfg, logger: l, db: db, storage: client, store: store, resolver: resolver, service: svc}, nil
}

// integrityDeps wires the integrity checks over the same store and bucket.
func (d *deps) integrityDeps() integrity.Deps {
	return integrity.Deps{
		Storage: d.storage,
		Bucket:  d.cfg.Storage.Bucket,
		Region:  d.cfg.Storage.Region,
		DB:      d.db,
		Columns: card.RequiredColumns(),
		Photos:  d.store,
		Media:   d.resolver,
		Logger:  d.logger,
	}
}
