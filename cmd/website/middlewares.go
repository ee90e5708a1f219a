package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/imagegallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/google/uuid"
)

/*
newVisitorMiddleware makes sure every browser has an anonymous visitor ID
in its session. Favorites are stored against that ID.
*/
func newVisitorMiddleware(sessionService sessions.Session[*models.Visitor], excludedPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				err     error
				visitor *models.Visitor
			)

			path := r.URL.Path

			/*
			 * If this path is excluded, keep going.
			 */
			for _, excludedPath := range excludedPaths {
				if strings.HasPrefix(path, excludedPath) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if visitor, err = sessionService.Get(r); err != nil || visitor == nil || visitor.ID == "" {
				visitor = &models.Visitor{ID: uuid.NewString()}

				if err = sessionService.Set(r, visitor); err != nil {
					slog.Error("error setting visitor session", "error", err)
				}

				if err = sessionService.Save(w, r); err != nil {
					slog.Error("error saving visitor session", "error", err)
				}

				slog.Debug("new visitor", "visitorID", visitor.ID)
			}

			ctx := context.WithValue(r.Context(), viewmodels.VisitorContextKey, visitor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
