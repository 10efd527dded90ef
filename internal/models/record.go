package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record is implemented by every stored catalog document.
type Record interface {
	GetID() primitive.ObjectID
	SetID(id primitive.ObjectID)
}

// DateLayout is the ISO-8601 calendar date layout used by forms.
const DateLayout = "2006-01-02"

// FormatDate renders an optional date the way forms expect it.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
