package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Genre names are unique across the catalog.
type Genre struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

const (
	GenreEntity = "genre"
)

func (g *Genre) GetID() primitive.ObjectID   { return g.ID }
func (g *Genre) SetID(id primitive.ObjectID) { g.ID = id }

func GenreURL(id primitive.ObjectID) string {
	return "/catalog/genre/" + id.Hex()
}
