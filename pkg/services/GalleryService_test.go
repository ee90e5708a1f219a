package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/adampresley/imagegallery/pkg/content"
	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var errTransport = &content.RequestError{Op: "test", URL: "http://content.test", Kind: content.ErrTransport}

type fakeContentClient struct {
	mu sync.Mutex

	taxonomies    []models.Taxonomy
	taxonomiesErr error
	categories    map[string][]models.Category
	categoryErrs  map[string]error
	items         map[string]content.ItemList
	itemErrs      map[string]error
	renditions    map[string]map[string]string
	renditionErrs map[string]error

	limits          map[string]int
	renditionsCalls map[string]int
}

func newFakeContentClient() *fakeContentClient {
	return &fakeContentClient{
		categories:      map[string][]models.Category{},
		categoryErrs:    map[string]error{},
		items:           map[string]content.ItemList{},
		itemErrs:        map[string]error{},
		renditions:      map[string]map[string]string{},
		renditionErrs:   map[string]error{},
		limits:          map[string]int{},
		renditionsCalls: map[string]int{},
	}
}

func (f *fakeContentClient) ListTaxonomies(ctx context.Context) ([]models.Taxonomy, error) {
	return f.taxonomies, f.taxonomiesErr
}

func (f *fakeContentClient) ListCategories(ctx context.Context, taxonomyID string) ([]models.Category, error) {
	if err := f.categoryErrs[taxonomyID]; err != nil {
		return nil, err
	}

	return f.categories[taxonomyID], nil
}

func (f *fakeContentClient) ListItems(ctx context.Context, categoryID string, limit int) (content.ItemList, error) {
	f.mu.Lock()
	f.limits[categoryID] = limit
	f.mu.Unlock()

	if err := f.itemErrs[categoryID]; err != nil {
		return content.ItemList{}, err
	}

	list := f.items[categoryID]
	if len(list.Items) > limit {
		list.Items = list.Items[:limit]
	}

	return list, nil
}

func (f *fakeContentClient) GetItem(ctx context.Context, itemID string) (models.Item, error) {
	urls, err := f.GetRenditionURLs(ctx, itemID)
	return models.Item{ID: itemID, RenditionURLs: urls}, err
}

func (f *fakeContentClient) GetRenditionURLs(ctx context.Context, itemID string) (map[string]string, error) {
	f.mu.Lock()
	f.renditionsCalls[itemID]++
	f.mu.Unlock()

	if err := f.renditionErrs[itemID]; err != nil {
		return nil, err
	}

	return f.renditions[itemID], nil
}

func makeItems(prefix string, n int) []models.Item {
	result := make([]models.Item, 0, n)

	for i := range n {
		result = append(result, models.Item{ID: fmt.Sprintf("%s-%d", prefix, i), Name: fmt.Sprintf("%s %d", prefix, i)})
	}

	return result
}

func thumbnailOnly(itemID string) map[string]string {
	return map[string]string{models.RenditionThumbnail: "https://cdn.test/" + itemID + "/thumb.jpg"}
}

/*
galleryFixture has two taxonomies holding three categories. Every item
has a thumbnail.
*/
func galleryFixture() *fakeContentClient {
	f := newFakeContentClient()
	f.taxonomies = []models.Taxonomy{{ID: "tax-a"}, {ID: "tax-b"}}
	f.categories["tax-a"] = []models.Category{{ID: "cat-1", Name: "Beaches"}, {ID: "cat-2", Name: "Mountains"}}
	f.categories["tax-b"] = []models.Category{{ID: "cat-3", Name: "Winter"}}

	f.items["cat-1"] = content.ItemList{Items: makeItems("beach", 10), TotalResults: 10}
	f.items["cat-2"] = content.ItemList{Items: makeItems("mountain", 2), TotalResults: 2}
	f.items["cat-3"] = content.ItemList{Items: makeItems("winter", 6), TotalResults: 6}

	for _, list := range f.items {
		for _, item := range list.Items {
			f.renditions[item.ID] = thumbnailOnly(item.ID)
		}
	}

	return f
}

func TestBuildHomeViewModel(t *testing.T) {
	defer goleak.VerifyNone(t)

	client := galleryFixture()
	service := NewGalleryService(GalleryServiceConfig{ContentClient: client, MaxFetchWorkers: 3})

	got, err := service.BuildHomeViewModel(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Categories, 3)

	assert.Equal(t, []string{"cat-1", "cat-2", "cat-3"}, []string{got.Categories[0].ID, got.Categories[1].ID, got.Categories[2].ID})
	assert.Equal(t, 10, got.Categories[0].TotalResults)
	assert.Equal(t, 2, got.Categories[1].TotalResults)
	assert.Equal(t, 6, got.Categories[2].TotalResults)

	for _, category := range got.Categories {
		assert.LessOrEqual(t, len(category.Items), HomePreviewLimit)
		assert.Equal(t, HomePreviewLimit, client.limits[category.ID], "preview must be a capped query")

		for _, item := range category.Items {
			assert.Equal(t, "https://cdn.test/"+item.ID+"/thumb.jpg", item.RenditionURLs[models.RenditionThumbnail])
			assert.Equal(t, item.RenditionURLs[models.RenditionThumbnail], got.ThumbnailURLs[item.ID])
		}
	}

	assert.Len(t, got.ThumbnailURLs, 4+2+4)
}

func TestBuildHomeViewModelFetchesSharedItemsOnce(t *testing.T) {
	client := galleryFixture()
	client.items["cat-3"] = content.ItemList{Items: makeItems("beach", 2), TotalResults: 2}

	service := NewGalleryService(GalleryServiceConfig{ContentClient: client})

	got, err := service.BuildHomeViewModel(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, client.renditionsCalls["beach-0"])
	assert.Equal(t, got.Categories[0].Items[0].RenditionURLs, got.Categories[2].Items[0].RenditionURLs)
}

func TestBuildHomeViewModelNoTaxonomiesIsNotFound(t *testing.T) {
	client := newFakeContentClient()
	client.taxonomies = []models.Taxonomy{}

	service := NewGalleryService(GalleryServiceConfig{ContentClient: client})

	_, err := service.BuildHomeViewModel(context.Background())
	require.Error(t, err)
	assert.True(t, content.IsNotFound(err))
	assert.False(t, content.IsTransport(err))
}

func TestBuildHomeViewModelNoCategoriesIsNotFound(t *testing.T) {
	client := newFakeContentClient()
	client.taxonomies = []models.Taxonomy{{ID: "tax-a"}, {ID: "tax-b"}}

	service := NewGalleryService(GalleryServiceConfig{ContentClient: client})

	_, err := service.BuildHomeViewModel(context.Background())
	require.Error(t, err)
	assert.True(t, content.IsNotFound(err))
}

func TestBuildHomeViewModelEnumerationFailuresFailFast(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeContentClient)
	}{
		{
			name:  "taxonomy fetch fails",
			setup: func(f *fakeContentClient) { f.taxonomiesErr = errTransport },
		},
		{
			name:  "one taxonomy's categories fail",
			setup: func(f *fakeContentClient) { f.categoryErrs["tax-b"] = errTransport },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			client := galleryFixture()
			tt.setup(client)

			service := NewGalleryService(GalleryServiceConfig{ContentClient: client})

			got, err := service.BuildHomeViewModel(context.Background())
			require.Error(t, err)
			assert.True(t, content.IsTransport(err))
			assert.False(t, content.IsNotFound(err))
			assert.Empty(t, got.Categories)
		})
	}
}

func TestBuildHomeViewModelDegradesFailedCategory(t *testing.T) {
	defer goleak.VerifyNone(t)

	client := galleryFixture()
	client.itemErrs["cat-2"] = errTransport

	service := NewGalleryService(GalleryServiceConfig{ContentClient: client})

	got, err := service.BuildHomeViewModel(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Categories, 3)

	assert.Len(t, got.Categories[0].Items, 4)
	assert.Equal(t, "cat-2", got.Categories[1].ID)
	assert.Empty(t, got.Categories[1].Items)
	assert.NotNil(t, got.Categories[1].Items)
	assert.Equal(t, 0, got.Categories[1].TotalResults)
	assert.Len(t, got.Categories[2].Items, 4)
}

func TestBuildHomeViewModelDegradesFailedThumbnail(t *testing.T) {
	client := galleryFixture()
	client.renditionErrs["winter-1"] = errTransport
	client.renditions["winter-2"] = map[string]string{models.RenditionSmall: "https://cdn.test/small.jpg"}

	service := NewGalleryService(GalleryServiceConfig{ContentClient: client})

	got, err := service.BuildHomeViewModel(context.Background())
	require.NoError(t, err)

	winter := got.Categories[2]
	require.Len(t, winter.Items, 4)

	assert.NotEmpty(t, winter.Items[0].RenditionURLs[models.RenditionThumbnail])
	assert.Empty(t, winter.Items[1].RenditionURLs)
	assert.NotNil(t, winter.Items[1].RenditionURLs)
	assert.Empty(t, winter.Items[2].RenditionURLs)

	_, ok := got.ThumbnailURLs["winter-1"]
	assert.False(t, ok)
	_, ok = got.ThumbnailURLs["winter-2"]
	assert.False(t, ok)
}

type staticFallback map[string]string

func (f staticFallback) ThumbnailURL(ctx context.Context, itemID string) (string, bool) {
	u, ok := f[itemID]
	return u, ok
}

func TestBuildHomeViewModelUsesThumbnailFallback(t *testing.T) {
	client := galleryFixture()
	client.renditions["mountain-0"] = map[string]string{models.RenditionNative: "https://cdn.test/native"}

	service := NewGalleryService(GalleryServiceConfig{
		ContentClient:     client,
		ThumbnailFallback: staticFallback{"mountain-0": "https://mirror.test/mountain-0.jpg"},
	})

	got, err := service.BuildHomeViewModel(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.test/mountain-0.jpg", got.ThumbnailURLs["mountain-0"])
	assert.NotContains(t, client.renditions["mountain-0"], models.RenditionThumbnail, "source map must not be mutated")
}

func TestBuildHomeViewModelCancelled(t *testing.T) {
	client := galleryFixture()
	service := NewGalleryService(GalleryServiceConfig{ContentClient: client})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.BuildHomeViewModel(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBuildGridViewModel(t *testing.T) {
	defer goleak.VerifyNone(t)

	client := newFakeContentClient()
	client.items["cat-1"] = content.ItemList{Items: makeItems("beach", 3), TotalResults: 3}
	client.renditions["beach-0"] = map[string]string{"Thumbnail": "t0", "Small": "s0", "Native": "n0"}
	client.renditionErrs["beach-1"] = errTransport
	client.renditions["beach-2"] = map[string]string{"Thumbnail": "t2", "Large": "l2"}

	service := NewGalleryService(GalleryServiceConfig{ContentClient: client, MaxFetchWorkers: 2})

	got, err := service.BuildGridViewModel(context.Background(), "cat-1")
	require.NoError(t, err)

	assert.Equal(t, GridItemLimit, client.limits["cat-1"])
	assert.Equal(t, "cat-1", got.CategoryID)
	assert.Equal(t, 3, got.TotalResults)
	require.Len(t, got.Items, 3)

	assert.Equal(t, []string{"beach-0", "beach-1", "beach-2"}, []string{got.Items[0].ID, got.Items[1].ID, got.Items[2].ID})
	assert.Equal(t, map[string]string{"Thumbnail": "t0", "Small": "s0", "Native": "n0"}, got.Items[0].RenditionURLs)
	assert.Equal(t, map[string]string{}, got.Items[1].RenditionURLs)
	assert.Equal(t, "l2", got.Items[2].RenditionURLs["Large"])
}

func TestBuildGridViewModelCapsItems(t *testing.T) {
	client := newFakeContentClient()
	client.items["big"] = content.ItemList{Items: makeItems("img", 150), TotalResults: 150}

	service := NewGalleryService(GalleryServiceConfig{ContentClient: client})

	got, err := service.BuildGridViewModel(context.Background(), "big")
	require.NoError(t, err)

	assert.Len(t, got.Items, GridItemLimit)
	assert.Equal(t, 150, got.TotalResults)
}

func TestBuildGridViewModelItemListFailureAborts(t *testing.T) {
	client := newFakeContentClient()
	client.itemErrs["cat-1"] = errTransport

	service := NewGalleryService(GalleryServiceConfig{ContentClient: client})

	got, err := service.BuildGridViewModel(context.Background(), "cat-1")
	require.Error(t, err)
	assert.True(t, content.IsTransport(err))
	assert.Empty(t, got.Items)
}

func TestBuildGridViewModelEmptyCategory(t *testing.T) {
	client := newFakeContentClient()

	service := NewGalleryService(GalleryServiceConfig{ContentClient: client})

	got, err := service.BuildGridViewModel(context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.NotNil(t, got.Items)
	assert.Equal(t, 0, got.TotalResults)
}

func TestBuildGridViewModelRequiresCategoryID(t *testing.T) {
	service := NewGalleryService(GalleryServiceConfig{ContentClient: newFakeContentClient()})

	_, err := service.BuildGridViewModel(context.Background(), "")
	assert.True(t, content.IsNotFound(err))
}

func TestResult(t *testing.T) {
	ok := Succeeded(3)
	assert.False(t, ok.IsDegraded())
	assert.Equal(t, 3, ok.ValueOr(7))

	bad := Degraded[int](errTransport)
	assert.True(t, bad.IsDegraded())
	assert.Equal(t, 7, bad.ValueOr(7))
}
