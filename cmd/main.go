package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"local-library/configs"
	"local-library/internal/daemon"
	"local-library/internal/db"
	"local-library/internal/handlers"
	"local-library/internal/store"
	"local-library/internal/utils"
	"local-library/internal/views"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)
	if err := run(cfg, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func newLogger(env string) *slog.Logger {
	if env == "development" {
		return slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func run(cfg configs.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	renderer, err := views.New()
	if err != nil {
		return err
	}

	exporter := daemon.NewLogExporter(stores.AuditLogs, logger, cfg.AuditExportInterval)
	go exporter.Run(ctx)

	deps := handlers.Deps{
		Stores:      stores,
		Views:       renderer,
		Logger:      logger,
		AuditLogger: utils.NewAuditLogger(stores.AuditLogs),
	}
	return serve(cfg, logger, deps)
}

// openStores selects the storage backend. The returned func releases it.
func openStores(ctx context.Context, cfg configs.Config, logger *slog.Logger) (store.Stores, func(), error) {
	switch cfg.StoreBackend {
	case configs.BackendMemory:
		logger.Warn("using in-memory store, records are lost on exit")
		return store.NewMemoryStores(), func() {}, nil

	case configs.BackendMongo:
		client, err := db.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return store.Stores{}, nil, err
		}
		database := client.Database(cfg.DBName)
		if err := db.EnsureIndexes(ctx, database); err != nil {
			_ = db.Disconnect(context.Background(), client)
			return store.Stores{}, nil, err
		}
		logger.Info("connected to MongoDB", slog.String("database", cfg.DBName))

		closeFn := func() {
			if err := db.Disconnect(context.Background(), client); err != nil {
				logger.Error("mongo disconnect failed", slog.String("error", err.Error()))
			}
		}
		return store.NewMongoStores(database, cfg.StoreTimeout), closeFn, nil

	default:
		return store.Stores{}, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
