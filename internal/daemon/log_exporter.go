package daemon

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/utils"
)

const DefaultExportInterval = 30 * time.Second

// LogExporter periodically ships unexported audit records and flags them as
// exported.
type LogExporter struct {
	Store    store.AuditStore
	Logger   *slog.Logger
	Interval time.Duration
	Export   func([]models.AuditLog) error
}

func NewLogExporter(s store.AuditStore, logger *slog.Logger, interval time.Duration) *LogExporter {
	if interval <= 0 {
		interval = DefaultExportInterval
	}
	return &LogExporter{
		Store:    s,
		Logger:   logger,
		Interval: interval,
		Export: func(logs []models.AuditLog) error {
			return utils.ExportData(logger, logs)
		},
	}
}

// Run exports on every tick until ctx is cancelled. A failed round is logged
// and retried on the next tick.
func (l *LogExporter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := l.ExportOnce(ctx); err != nil && ctx.Err() == nil {
				l.Logger.Error("audit export failed", slog.String("error", err.Error()))
			}
		}
	}
}

// ExportOnce exports the pending records and returns how many were shipped.
func (l *LogExporter) ExportOnce(ctx context.Context) (int, error) {
	logs, err := l.Store.ListUnexported(ctx)
	if err != nil {
		return 0, err
	}
	if len(logs) == 0 {
		return 0, nil
	}

	if err := l.Export(logs); err != nil {
		return 0, err
	}

	ids := make([]primitive.ObjectID, 0, len(logs))
	for i := 0; i < len(logs); i++ {
		ids = append(ids, logs[i].ID)
	}
	if err := l.Store.MarkExported(ctx, ids); err != nil {
		return 0, err
	}
	return len(logs), nil
}
