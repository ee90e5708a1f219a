package gallery

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/imagegallery/cmd/website/internal/viewmodels"
	"github.com/adampresley/imagegallery/pkg/content"
	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/adampresley/imagegallery/pkg/navigation"
	"github.com/adampresley/imagegallery/pkg/services"
)

type GalleryHandlers interface {
	CategoryPage(w http.ResponseWriter, r *http.Request)
	ToggleFavorite(w http.ResponseWriter, r *http.Request)
}

type GalleryControllerConfig struct {
	FavoriteService services.FavoriteServicer
	GalleryService  services.GalleryServicer
	Renderer        rendering.TemplateRenderer
}

type GalleryController struct {
	favoriteService services.FavoriteServicer
	galleryService  services.GalleryServicer
	renderer        rendering.TemplateRenderer
}

func NewGalleryController(config GalleryControllerConfig) GalleryController {
	return GalleryController{
		favoriteService: config.FavoriteService,
		galleryService:  config.GalleryService,
		renderer:        config.Renderer,
	}
}

/*
GET /category/{id}

Query parameters:
  - categoryName: heading for the page
  - image: index of the image to open in the slideshow
  - nav: next, previous, or close, applied after image
  - key: a keyboard key name, applied after image
*/
func (c GalleryController) CategoryPage(w http.ResponseWriter, r *http.Request) {
	var (
		err         error
		grid        models.GridViewModel
		favoriteIDs []string
	)

	pageName := "pages/category"

	viewData := viewmodels.CategoryGrid{
		BaseViewModel: viewmodels.BaseViewModel{
			IsHtmx: httphelpers.IsHtmx(r),
			JavascriptIncludes: []rendering.JavascriptInclude{
				{Type: "module", Src: "/static/js/pages/slideshow.js"},
			},
		},
		CategoryID:   httphelpers.GetFromRequest[string](r, "id"),
		CategoryName: httphelpers.GetFromRequest[string](r, "categoryName"),
		Items:        []viewmodels.GridItem{},
	}

	if grid, err = c.galleryService.BuildGridViewModel(r.Context(), viewData.CategoryID); err != nil {
		if content.IsNotFound(err) {
			slog.Warn("category not found", "categoryID", viewData.CategoryID, "error", err)
			viewData.IsWarning = true
			viewData.Message = "We couldn't find that category."

			c.renderer.Render(pageName, viewData, w)
			return
		}

		slog.Error("error building category grid", "categoryID", viewData.CategoryID, "error", err)
		viewData.IsError = true
		viewData.Message = "There was a problem getting photos for this category."

		c.renderer.Render(pageName, viewData, w)
		return
	}

	visitor := viewmodels.GetVisitorFromContext(r)

	if visitor.ID != "" {
		if favoriteIDs, err = c.favoriteService.GetFavoriteItemIDs(visitor.ID); err != nil {
			slog.Error("error getting favorites. continuing without them", "visitorID", visitor.ID, "error", err)
		}
	}

	viewData.TotalResults = grid.TotalResults

	for index, item := range grid.Items {
		item.IsFavorite = slices.Contains(favoriteIDs, item.ID)
		grid.Items[index] = item

		viewData.Items = append(viewData.Items, viewmodels.GridItem{
			ID:         item.ID,
			Name:       item.Name,
			Index:      index,
			OpenURL:    viewmodels.SlideURL(viewData.CategoryID, viewData.CategoryName, navigation.State{CurrentIndex: index}),
			SmallURL:   item.RenditionURL(models.RenditionSmall, models.RenditionThumbnail, models.RenditionNative),
			IsFavorite: item.IsFavorite,
		})
	}

	/*
	 * The slideshow is bounded by the items actually loaded, which can be
	 * fewer than TotalResults.
	 */
	machine := navigation.NewMachine(len(grid.Items))
	scrollLock := navigation.AttachScrollLock(machine)
	defer scrollLock.Detach()

	applyNavigation(machine, r)

	viewData.BodyClass = scrollLock.BodyClass()

	if machine.IsOpen() {
		viewData.Slideshow = c.newSlideshow(viewData.CategoryID, viewData.CategoryName, grid, machine.State())
	}

	c.renderer.Render(pageName, viewData, w)
}

/*
PUT /item/{id}/toggle-favorite
*/
func (c GalleryController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var (
		err         error
		wasFavorite bool
	)

	visitor := viewmodels.GetVisitorFromContext(r)
	itemID := httphelpers.GetFromRequest[string](r, "id")

	if visitor.ID == "" || itemID == "" {
		httphelpers.WriteText(w, http.StatusBadRequest, "Missing visitor or item")
		return
	}

	if wasFavorite, err = c.favoriteService.ToggleFavorite(visitor.ID, itemID); err != nil {
		slog.Error("error toggling favorite", "error", err, "visitorID", visitor.ID, "itemID", itemID)
		httphelpers.TextInternalServerError(w, "Error toggling favorite")
		return
	}

	icon := "icon"

	if !wasFavorite {
		icon += " icon-heart"
	} else {
		icon += " icon-empty-heart"
	}

	markup := fmt.Sprintf("<i class='%s'></i>", icon)
	httphelpers.WriteHtml(w, http.StatusOK, markup)
}

func (c GalleryController) newSlideshow(categoryID, categoryName string, grid models.GridViewModel, state navigation.State) *viewmodels.Slideshow {
	total := len(grid.Items)
	item := grid.Items[state.CurrentIndex]

	prev := navigation.Transition(state, navigation.Previous{}, total)
	next := navigation.Transition(state, navigation.Next{}, total)
	closed := navigation.Transition(state, navigation.Close{}, total)

	return &viewmodels.Slideshow{
		Item:       item,
		Index:      state.CurrentIndex,
		Position:   state.CurrentIndex + 1,
		Total:      grid.TotalResults,
		ImageURL:   item.RenditionURL(models.RenditionLarge, models.RenditionMedium, models.RenditionNative, models.RenditionSmall),
		PrevURL:    viewmodels.SlideURL(categoryID, categoryName, prev),
		NextURL:    viewmodels.SlideURL(categoryID, categoryName, next),
		CloseURL:   viewmodels.SlideURL(categoryID, categoryName, closed),
		HidePrev:   prev == state,
		HideNext:   next == state,
		IsFavorite: item.IsFavorite,
	}
}

func applyNavigation(machine *navigation.Machine, r *http.Request) {
	query := r.URL.Query()

	if !query.Has("image") {
		return
	}

	index, err := strconv.Atoi(query.Get("image"))
	if err != nil {
		return
	}

	machine.Dispatch(navigation.OpenAt{Index: index})

	switch strings.ToLower(query.Get("nav")) {
	case "next":
		machine.Dispatch(navigation.Next{})
	case "previous", "prev":
		machine.Dispatch(navigation.Previous{})
	case "close":
		machine.Dispatch(navigation.Close{})
	}

	if key := query.Get("key"); key != "" {
		machine.HandleKey(navigation.ParseKey(key))
	}
}
