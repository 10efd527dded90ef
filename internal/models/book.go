package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Book struct {
	ID      primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title   string               `bson:"title" json:"title"`
	Author  primitive.ObjectID   `bson:"author" json:"author"`
	Summary string               `bson:"summary" json:"summary"`
	ISBN    string               `bson:"isbn" json:"isbn"`
	Genre   []primitive.ObjectID `bson:"genre" json:"genre"`
}

const (
	BookEntity = "book"
)

func (b *Book) GetID() primitive.ObjectID   { return b.ID }
func (b *Book) SetID(id primitive.ObjectID) { b.ID = id }

// HasGenre reports whether the book is filed under genre id.
func (b *Book) HasGenre(id primitive.ObjectID) bool {
	for _, g := range b.Genre {
		if g == id {
			return true
		}
	}
	return false
}

func BookURL(id primitive.ObjectID) string {
	return "/catalog/book/" + id.Hex()
}
