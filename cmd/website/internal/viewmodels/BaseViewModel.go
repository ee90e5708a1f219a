package viewmodels

import (
	"net/http"

	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/imagegallery/pkg/models"
)

type BaseViewModel struct {
	Message            string
	IsError            bool
	IsWarning          bool
	IsHtmx             bool
	BodyClass          string
	JavascriptIncludes []rendering.JavascriptInclude
}

type visitorContextKey struct{}

var VisitorContextKey = visitorContextKey{}

func GetVisitorFromContext(r *http.Request) *models.Visitor {
	if result, ok := r.Context().Value(VisitorContextKey).(*models.Visitor); ok {
		return result
	}

	return &models.Visitor{}
}
