package home

import (
	"log/slog"
	"net/http"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/imagegallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/imagegallery/pkg/content"
	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/adampresley/imagegallery/pkg/services"
)

type HomeHandlers interface {
	HomePage(w http.ResponseWriter, r *http.Request)
}

type HomeControllerConfig struct {
	GalleryService services.GalleryServicer
	Renderer       rendering.TemplateRenderer
}

type HomeController struct {
	galleryService services.GalleryServicer
	renderer       rendering.TemplateRenderer
}

func NewHomeController(config HomeControllerConfig) HomeController {
	return HomeController{
		galleryService: config.GalleryService,
		renderer:       config.Renderer,
	}
}

/*
GET /
*/
func (c HomeController) HomePage(w http.ResponseWriter, r *http.Request) {
	var (
		err  error
		home models.HomeViewModel
	)

	pageName := "pages/home"

	viewData := viewmodels.HomePage{
		BaseViewModel: viewmodels.BaseViewModel{
			Message:            "",
			IsHtmx:             httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{},
		},
		Categories: []viewmodels.HomePageCategory{},
	}

	if home, err = c.galleryService.BuildHomeViewModel(r.Context()); err != nil {
		if content.IsNotFound(err) {
			slog.Warn("no content published for the home page", "error", err)
			viewData.IsWarning = true
			viewData.Message = "There are no photos published yet. Please check back soon."

			c.renderer.Render(pageName, viewData, w)
			return
		}

		slog.Error("error building home page", "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem getting photos for this page."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	for _, category := range home.Categories {
		viewData.Categories = append(viewData.Categories, viewmodels.NewHomePageCategory(category, home.ThumbnailURLs))
	}

	c.renderer.Render(pageName, viewData, w)
}
