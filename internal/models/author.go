package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Author struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName   string             `bson:"first_name" json:"first_name"`
	FamilyName  string             `bson:"family_name" json:"family_name"`
	DateOfBirth *time.Time         `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time         `bson:"date_of_death,omitempty" json:"date_of_death,omitempty"`
}

const (
	AuthorEntity = "author"

	// AuthorNameMaxLength bounds both first and family names.
	AuthorNameMaxLength = 100
)

func (a *Author) GetID() primitive.ObjectID   { return a.ID }
func (a *Author) SetID(id primitive.ObjectID) { a.ID = id }

// AuthorName is the display name, "family_name, first_name".
func AuthorName(a Author) string {
	return a.FamilyName + ", " + a.FirstName
}

// AuthorLifespan formats the birth and death years as "(1920 - 1992)".
// A missing date leaves its side blank; no dates at all yields "".
func AuthorLifespan(a Author) string {
	if a.DateOfBirth == nil && a.DateOfDeath == nil {
		return ""
	}
	return "(" + year(a.DateOfBirth) + " - " + year(a.DateOfDeath) + ")"
}

func AuthorURL(id primitive.ObjectID) string {
	return "/catalog/author/" + id.Hex()
}

func year(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006")
}
