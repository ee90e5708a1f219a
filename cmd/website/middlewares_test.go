package main

import (
	"encoding/gob"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/imagegallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/stretchr/testify/assert"
)

func newTestVisitorMiddleware() func(http.Handler) http.Handler {
	gob.Register(&models.Visitor{})

	cookieStore := sessions.NewCookieStore("test-secret")
	sessionService := sessions.NewSessionWrapper[*models.Visitor](cookieStore, "imagegalleryvisitors", "visitor")

	return newVisitorMiddleware(sessionService, []string{"/static", "/heartbeat"})
}

func TestVisitorMiddlewareAssignsVisitor(t *testing.T) {
	var got *models.Visitor

	handler := newTestVisitorMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = viewmodels.GetVisitorFromContext(r)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotNil(t, got)
	assert.NotEmpty(t, got.ID)
	assert.NotEmpty(t, w.Header().Values("Set-Cookie"))
}

func TestVisitorMiddlewareSkipsExcludedPaths(t *testing.T) {
	var got *models.Visitor

	handler := newTestVisitorMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = viewmodels.GetVisitorFromContext(r)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/css/styles.css", nil))

	assert.Empty(t, got.ID)
	assert.Empty(t, w.Header().Values("Set-Cookie"))
}
