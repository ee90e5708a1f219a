package viewmodels

import "github.com/adampresley/imagegallery/pkg/models"

type HomePage struct {
	BaseViewModel
	Categories []HomePageCategory
}

type HomePageCategory struct {
	ID            string
	Name          string
	TotalResults  int
	URL           string
	ThumbnailURLs []string
}

func NewHomePageCategory(category models.Category, thumbnailURLs map[string]string) HomePageCategory {
	result := HomePageCategory{
		ID:            category.ID,
		Name:          category.Name,
		TotalResults:  category.TotalResults,
		URL:           CategoryURL(category.ID, category.Name),
		ThumbnailURLs: []string{},
	}

	for _, item := range category.Items {
		if u, ok := thumbnailURLs[item.ID]; ok {
			result.ThumbnailURLs = append(result.ThumbnailURLs, u)
		}
	}

	return result
}
