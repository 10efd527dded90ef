package models

import (
	"time"

	"github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CopyStatus string

const (
	StatusAvailable   CopyStatus = "Available"
	StatusMaintenance CopyStatus = "Maintenance"
	StatusLoaned      CopyStatus = "Loaned"
	StatusReserved    CopyStatus = "Reserved"

	// DefaultCopyStatus is assigned when a copy is saved without a status.
	DefaultCopyStatus = StatusMaintenance

	BookInstanceEntity = "bookinstance"
)

// BookInstance is a single physical copy of a Book.
type BookInstance struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Book    primitive.ObjectID `bson:"book" json:"book"`
	Imprint string             `bson:"imprint" json:"imprint"`
	Status  CopyStatus         `bson:"status" json:"status"`
	DueBack *time.Time         `bson:"due_back,omitempty" json:"due_back,omitempty"`
}

// CopyStatuses lists the statuses in the order forms offer them.
var CopyStatuses = []CopyStatus{
	StatusAvailable,
	StatusMaintenance,
	StatusLoaned,
	StatusReserved,
}

var ValidCopyStatuses = map[string]bool{
	string(StatusAvailable):   true,
	string(StatusMaintenance): true,
	string(StatusLoaned):      true,
	string(StatusReserved):    true,
}

func IsValidCopyStatus(status string) bool {
	return ValidCopyStatuses[status]
}

func (bi *BookInstance) GetID() primitive.ObjectID   { return bi.ID }
func (bi *BookInstance) SetID(id primitive.ObjectID) { bi.ID = id }

// DueBackLabel formats the due date as "Jan 2, 2006", or "" when unset.
func DueBackLabel(bi BookInstance) string {
	if bi.DueBack == nil {
		return ""
	}
	return bi.DueBack.Format("Jan 2, 2006")
}

// DueBackRelative describes the due date relative to now, e.g. "3 days from now".
func DueBackRelative(bi BookInstance, now time.Time) string {
	if bi.DueBack == nil {
		return ""
	}
	return humanize.RelTime(*bi.DueBack, now, "ago", "from now")
}

func BookInstanceURL(id primitive.ObjectID) string {
	return "/catalog/bookinstance/" + id.Hex()
}
