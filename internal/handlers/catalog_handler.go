package handlers

import (
	"context"
	"net/http"

	"local-library/internal/models"
	"local-library/internal/parallel"
	"local-library/internal/views"
)

// CatalogHandler serves the catalog home page with its record counts.
type CatalogHandler struct {
	Deps
}

func NewCatalogHandler(d Deps) *CatalogHandler {
	return &CatalogHandler{Deps: d}
}

// GET /catalog
func (h *CatalogHandler) Index(w http.ResponseWriter, r *http.Request) {
	counts := map[string]func(ctx context.Context) (int64, error){
		"book_count":          h.Stores.Books.Count,
		"book_instance_count": h.Stores.BookInstances.Count,
		"book_instance_available_count": func(ctx context.Context) (int64, error) {
			return h.Stores.BookInstances.CountByStatus(ctx, models.StatusAvailable)
		},
		"author_count": h.Stores.Authors.Count,
		"genre_count":  h.Stores.Genres.Count,
	}

	tasks := make(parallel.Tasks, len(counts))
	for name, count := range counts {
		count := count
		tasks[name] = func(ctx context.Context) (any, error) { return count(ctx) }
	}

	results, err := parallel.Run(r.Context(), tasks)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := views.PageData{Title: "Local Library Home", Counts: make(map[string]int64, len(results))}
	for name := range counts {
		data.Counts[name] = parallel.Value[int64](results, name)
	}
	h.render(w, r, http.StatusOK, "index", data)
}
