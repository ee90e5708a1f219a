package api

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/imagegallery/pkg/content"
	"github.com/adampresley/imagegallery/pkg/services"
)

type ApiHandlers interface {
	HomeData(w http.ResponseWriter, r *http.Request)
	CategoryData(w http.ResponseWriter, r *http.Request)
}

type ApiControllerConfig struct {
	GalleryService services.GalleryServicer
}

type ApiController struct {
	galleryService services.GalleryServicer
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func NewApiController(config ApiControllerConfig) ApiController {
	return ApiController{
		galleryService: config.GalleryService,
	}
}

/*
GET /api/home
*/
func (c ApiController) HomeData(w http.ResponseWriter, r *http.Request) {
	home, err := c.galleryService.BuildHomeViewModel(r.Context())

	if err != nil {
		slog.Error("error building home data", "error", err)
		writeError(w, err)
		return
	}

	httphelpers.JsonOK(w, home)
}

/*
GET /api/category/{id}
*/
func (c ApiController) CategoryData(w http.ResponseWriter, r *http.Request) {
	categoryID := httphelpers.GetFromRequest[string](r, "id")
	grid, err := c.galleryService.BuildGridViewModel(r.Context(), categoryID)

	if err != nil {
		slog.Error("error building category data", "categoryID", categoryID, "error", err)
		writeError(w, err)
		return
	}

	httphelpers.JsonOK(w, grid)
}

func writeError(w http.ResponseWriter, err error) {
	if content.IsNotFound(err) {
		httphelpers.WriteJson(w, http.StatusNotFound, errorResponse{Error: "no content found", Kind: "not_found"})
		return
	}

	if content.IsTransport(err) {
		httphelpers.WriteJson(w, http.StatusBadGateway, errorResponse{Error: "content source unavailable", Kind: "transport"})
		return
	}

	httphelpers.WriteJson(w, http.StatusInternalServerError, errorResponse{Error: "unexpected error", Kind: "internal"})
}
