package handlers

import (
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/models"
	"local-library/internal/views"
)

var (
	authorFields = []string{"first_name", "family_name", "date_of_birth", "date_of_death"}
	genreFields  = []string{"name"}
	bookFields   = []string{"title", "author", "summary", "isbn"}
	copyFields   = []string{"book", "imprint", "status", "due_back"}
)

func authorOptions(authors []models.Author, selected string) []views.Option {
	out := make([]views.Option, len(authors))
	for i, a := range authors {
		out[i] = views.Option{
			Value:    a.ID.Hex(),
			Label:    unescape(models.AuthorName(a)),
			Selected: a.ID.Hex() == selected,
		}
	}
	return out
}

func genreOptions(genres []models.Genre, selected []string) []views.Option {
	out := make([]views.Option, len(genres))
	for i, g := range genres {
		out[i] = views.Option{
			Value:    g.ID.Hex(),
			Label:    unescape(g.Name),
			Selected: slices.Contains(selected, g.ID.Hex()),
		}
	}
	return out
}

func bookOptions(books []models.Book, selected string) []views.Option {
	out := make([]views.Option, len(books))
	for i, b := range books {
		out[i] = views.Option{
			Value:    b.ID.Hex(),
			Label:    unescape(b.Title),
			Selected: b.ID.Hex() == selected,
		}
	}
	return out
}

func statusOptions(selected string) []views.Option {
	if selected == "" {
		selected = string(models.DefaultCopyStatus)
	}
	out := make([]views.Option, len(models.CopyStatuses))
	for i, s := range models.CopyStatuses {
		out[i] = views.Option{Value: string(s), Label: string(s), Selected: string(s) == selected}
	}
	return out
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
