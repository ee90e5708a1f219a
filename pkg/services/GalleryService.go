package services

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/adampresley/imagegallery/pkg/content"
	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/alitto/pond/v2"
	"golang.org/x/sync/errgroup"
)

const (
	HomePreviewLimit = 4
	GridItemLimit    = 100

	defaultMaxFetchWorkers = 16
)

type GalleryServicer interface {
	BuildHomeViewModel(ctx context.Context) (models.HomeViewModel, error)
	BuildGridViewModel(ctx context.Context, categoryID string) (models.GridViewModel, error)
}

/*
ThumbnailFallback supplies a thumbnail for items whose source has no
Thumbnail rendition. The second return is false when there is none.
*/
type ThumbnailFallback interface {
	ThumbnailURL(ctx context.Context, itemID string) (string, bool)
}

type GalleryServiceConfig struct {
	ContentClient     content.Client
	MaxFetchWorkers   int
	ThumbnailFallback ThumbnailFallback
}

type GalleryService struct {
	contentClient     content.Client
	maxFetchWorkers   int
	thumbnailFallback ThumbnailFallback
}

func NewGalleryService(config GalleryServiceConfig) GalleryService {
	if config.MaxFetchWorkers <= 0 {
		config.MaxFetchWorkers = defaultMaxFetchWorkers
	}

	return GalleryService{
		contentClient:     config.ContentClient,
		maxFetchWorkers:   config.MaxFetchWorkers,
		thumbnailFallback: config.ThumbnailFallback,
	}
}

/*
BuildHomeViewModel gathers every category of every taxonomy, a preview of
up to HomePreviewLimit items for each, and the thumbnail of each preview
item. Failing to enumerate taxonomies or categories fails the whole
build. Failing to fetch a category's items or an item's thumbnail only
empties that branch.
*/
func (s GalleryService) BuildHomeViewModel(ctx context.Context) (models.HomeViewModel, error) {
	var (
		err        error
		categories []models.Category
	)

	result := models.HomeViewModel{
		Categories:    []models.Category{},
		ThumbnailURLs: map[string]string{},
	}

	if categories, err = s.fetchAllCategories(ctx); err != nil {
		return result, err
	}

	pool := pond.NewPool(s.maxFetchWorkers)
	defer func() { _ = pool.Stop().Wait() }()

	/*
	 * Stage 1: preview items for every category
	 */
	previews := s.fetchPreviewItems(ctx, pool, categories)

	if err = ctx.Err(); err != nil {
		return result, fmt.Errorf("home page build cancelled: %w", err)
	}

	/*
	 * Stage 2: thumbnails for every distinct preview item. An item can
	 * appear in more than one category, so it is fetched once.
	 */
	itemIDs := []string{}
	seen := map[string]struct{}{}

	for _, preview := range previews {
		for _, item := range preview.ValueOr(content.ItemList{}).Items {
			if _, ok := seen[item.ID]; ok {
				continue
			}

			seen[item.ID] = struct{}{}
			itemIDs = append(itemIDs, item.ID)
		}
	}

	thumbnails := s.fetchThumbnailURLs(ctx, pool, itemIDs)

	if err = ctx.Err(); err != nil {
		return result, fmt.Errorf("home page build cancelled: %w", err)
	}

	/*
	 * Assemble
	 */
	for index, itemID := range itemIDs {
		if u := thumbnails[index].ValueOr(""); u != "" {
			result.ThumbnailURLs[itemID] = u
		}
	}

	for index, category := range categories {
		list := previews[index].ValueOr(content.ItemList{})

		category.TotalResults = list.TotalResults
		category.Items = make([]models.Item, 0, min(len(list.Items), HomePreviewLimit))

		for _, item := range list.Items {
			if len(category.Items) == HomePreviewLimit {
				break
			}

			item.RenditionURLs = map[string]string{}

			if u, ok := result.ThumbnailURLs[item.ID]; ok {
				item.RenditionURLs[models.RenditionThumbnail] = u
			}

			category.Items = append(category.Items, item)
		}

		result.Categories = append(result.Categories, category)
	}

	slog.Debug("home view model built", "categories", len(result.Categories), "thumbnails", len(result.ThumbnailURLs))
	return result, nil
}

/*
BuildGridViewModel fetches up to GridItemLimit items of a category along
with each item's rendition URLs. TotalResults is whatever the source
reports, so it can be larger than the number of items returned.
*/
func (s GalleryService) BuildGridViewModel(ctx context.Context, categoryID string) (models.GridViewModel, error) {
	var (
		err  error
		list content.ItemList
	)

	result := models.GridViewModel{
		CategoryID: categoryID,
		Items:      []models.Item{},
	}

	if categoryID == "" {
		return result, fmt.Errorf("category ID is required: %w", content.ErrNotFound)
	}

	if list, err = s.contentClient.ListItems(ctx, categoryID, GridItemLimit); err != nil {
		return result, fmt.Errorf("error fetching items for category %s: %w", categoryID, err)
	}

	items := list.Items
	if len(items) > GridItemLimit {
		slog.Warn("content source returned more items than requested", "categoryID", categoryID, "returned", len(items), "limit", GridItemLimit)
		items = items[:GridItemLimit]
	}

	result.TotalResults = list.TotalResults

	pool := pond.NewPool(s.maxFetchWorkers)
	defer func() { _ = pool.Stop().Wait() }()

	renditions := make([]Result[map[string]string], len(items))
	group := pool.NewGroup()

	for index, item := range items {
		group.Submit(func() {
			renditions[index] = s.fetchRenditionURLs(ctx, item.ID)
		})
	}

	if err = group.Wait(); err != nil {
		slog.Error("rendition fetch group reported an error", "categoryID", categoryID, "error", err)
	}

	if err = ctx.Err(); err != nil {
		return result, fmt.Errorf("grid build for category %s cancelled: %w", categoryID, err)
	}

	for index, item := range items {
		item.RenditionURLs = renditions[index].ValueOr(map[string]string{})

		if item.RenditionURLs == nil {
			item.RenditionURLs = map[string]string{}
		}

		result.Items = append(result.Items, item)
	}

	return result, nil
}

/*
fetchAllCategories lists taxonomies, then the categories of each taxonomy
concurrently. The first failure cancels the remaining requests. The
returned order is taxonomy order, then the order within each taxonomy.
*/
func (s GalleryService) fetchAllCategories(ctx context.Context) ([]models.Category, error) {
	var (
		err        error
		taxonomies []models.Taxonomy
	)

	if taxonomies, err = s.contentClient.ListTaxonomies(ctx); err != nil {
		return nil, fmt.Errorf("error fetching taxonomies: %w", err)
	}

	if len(taxonomies) == 0 {
		return nil, fmt.Errorf("no taxonomies published: %w", content.ErrNotFound)
	}

	perTaxonomy := make([][]models.Category, len(taxonomies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxFetchWorkers)

	for index, taxonomy := range taxonomies {
		g.Go(func() error {
			categories, err := s.contentClient.ListCategories(gctx, taxonomy.ID)

			if err != nil {
				return fmt.Errorf("error fetching categories for taxonomy %s: %w", taxonomy.ID, err)
			}

			perTaxonomy[index] = categories
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}

	result := []models.Category{}

	for _, categories := range perTaxonomy {
		result = append(result, categories...)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("no categories found in %d taxonomies: %w", len(taxonomies), content.ErrNotFound)
	}

	return result, nil
}

func (s GalleryService) fetchPreviewItems(ctx context.Context, pool pond.Pool, categories []models.Category) []Result[content.ItemList] {
	result := make([]Result[content.ItemList], len(categories))
	group := pool.NewGroup()

	for index, category := range categories {
		group.Submit(func() {
			list, err := s.contentClient.ListItems(ctx, category.ID, HomePreviewLimit)

			if err != nil {
				slog.Warn("unable to fetch preview items for category. showing it empty", "categoryID", category.ID, "error", err)
				result[index] = Degraded[content.ItemList](err)
				return
			}

			result[index] = Succeeded(list)
		})
	}

	if err := group.Wait(); err != nil {
		slog.Error("preview item group reported an error", "error", err)
	}

	return result
}

func (s GalleryService) fetchThumbnailURLs(ctx context.Context, pool pond.Pool, itemIDs []string) []Result[string] {
	result := make([]Result[string], len(itemIDs))
	group := pool.NewGroup()

	for index, itemID := range itemIDs {
		group.Submit(func() {
			renditions := s.fetchRenditionURLs(ctx, itemID)

			if renditions.IsDegraded() {
				result[index] = Degraded[string](renditions.Err)
				return
			}

			result[index] = Succeeded(renditions.Value[models.RenditionThumbnail])
		})
	}

	if err := group.Wait(); err != nil {
		slog.Error("thumbnail group reported an error", "error", err)
	}

	return result
}

/*
fetchRenditionURLs gets one item's renditions, filling in the thumbnail
from the fallback when the source has none.
*/
func (s GalleryService) fetchRenditionURLs(ctx context.Context, itemID string) Result[map[string]string] {
	urls, err := s.contentClient.GetRenditionURLs(ctx, itemID)

	if err != nil {
		slog.Warn("unable to fetch rendition URLs for item", "itemID", itemID, "error", err)
		return Degraded[map[string]string](err)
	}

	urls = maps.Clone(urls)
	if urls == nil {
		urls = map[string]string{}
	}

	if _, ok := urls[models.RenditionThumbnail]; !ok && s.thumbnailFallback != nil {
		if u, found := s.thumbnailFallback.ThumbnailURL(ctx, itemID); found {
			urls[models.RenditionThumbnail] = u
		}
	}

	return Succeeded(urls)
}
