package content

import (
	"context"

	"github.com/adampresley/imagegallery/pkg/models"
)

/*
Client is everything the gallery needs from a content source. The
delivery API client satisfies it, as does anything else that can
answer these five questions.
*/
type Client interface {
	ListTaxonomies(ctx context.Context) ([]models.Taxonomy, error)
	ListCategories(ctx context.Context, taxonomyID string) ([]models.Category, error)
	ListItems(ctx context.Context, categoryID string, limit int) (ItemList, error)
	GetItem(ctx context.Context, itemID string) (models.Item, error)
	GetRenditionURLs(ctx context.Context, itemID string) (map[string]string, error)
}

/*
ItemList is one page of items for a category. TotalResults is the count
reported by the source and can be larger than len(Items).
*/
type ItemList struct {
	Items        []models.Item
	TotalResults int
}
