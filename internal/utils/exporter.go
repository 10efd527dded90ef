package utils

import (
	"log/slog"

	"local-library/internal/models"
)

// ExportData ships audit records out of the database. Records are written to
// the structured log, one line each.
func ExportData(logger *slog.Logger, logs []models.AuditLog) error {
	for _, log := range logs {
		logger.Info("audit",
			slog.String("id", log.ID.Hex()),
			slog.Time("timestamp", log.Timestamp),
			slog.String("entity", log.Entity),
			slog.String("action", log.Action),
			slog.Any("data", log.Data),
		)
	}
	return nil
}
