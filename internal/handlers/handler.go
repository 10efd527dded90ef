package handlers

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/store"
	"local-library/internal/utils"
	"local-library/internal/views"
)

// Deps bundles what every page handler needs. It is built once in main and
// shared by all handlers.
type Deps struct {
	Stores      store.Stores
	Views       *views.Renderer
	Logger      *slog.Logger
	AuditLogger *utils.AuditLogger
}

// id parses the {id} path variable. Routes only match 24 hex characters, so a
// failure here means the handler was mounted on the wrong route.
func (d Deps) id(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		d.notFound(w, r, "Invalid record id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseForm reads the request body and reports a 400 page on failure.
func (d Deps) parseForm(w http.ResponseWriter, r *http.Request) (url.Values, bool) {
	if err := r.ParseForm(); err != nil {
		d.badRequest(w, r, err)
		return nil, false
	}
	return r.PostForm, true
}

// audit records a write. A failure is logged but does not undo the write.
func (d Deps) audit(ctx context.Context, r *http.Request, entity, action string, data any) {
	if d.AuditLogger == nil {
		return
	}
	if err := d.AuditLogger.Log(ctx, entity, action, data); err != nil {
		d.Logger.Warn("audit log failed",
			slog.String("entity", entity),
			slog.String("action", action),
			slog.String("request_url", r.URL.String()),
			slog.String("error", err.Error()),
		)
	}
}

// redirect answers a successful POST with 303 See Other so a reload never
// resubmits the form.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// rawForm copies the first submitted value of each key, as typed, for
// redisplay after a failed validation.
func rawForm(form url.Values, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = form.Get(k)
	}
	return out
}

// unescape turns a stored, escaped value back into display text. The
// templates escape it again on output.
func unescape(s string) string {
	return html.UnescapeString(s)
}
