package utils

import (
	"context"
	"time"

	"local-library/internal/models"
	"local-library/internal/store"
)

// AuditLogger records every catalog write in the audit log collection.
// Build it with NewAuditLogger; Now is replaceable for tests.
type AuditLogger struct {
	Store store.AuditStore
	Now   func() time.Time
}

func NewAuditLogger(s store.AuditStore) *AuditLogger {
	return &AuditLogger{Store: s, Now: time.Now}
}

func (l *AuditLogger) Log(ctx context.Context, entity, action string, data any) error {
	log := models.AuditLog{
		Timestamp: l.Now().UTC(),
		Entity:    entity,
		Action:    action,
		Data:      data,
	}
	return l.Store.Insert(ctx, &log)
}
