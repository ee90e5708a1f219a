package viewmodels

import (
	"fmt"
	"net/url"

	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/adampresley/imagegallery/pkg/navigation"
)

type CategoryGrid struct {
	BaseViewModel

	CategoryID   string
	CategoryName string
	TotalResults int
	Items        []GridItem
	Slideshow    *Slideshow
}

type GridItem struct {
	ID         string
	Name       string
	Index      int
	OpenURL    string
	SmallURL   string
	IsFavorite bool
}

/*
Slideshow is the open image overlay. The prev/next/close URLs are where
the matching control (or arrow/escape key) leads.
*/
type Slideshow struct {
	Item       models.Item
	Index      int
	Position   int
	Total      int
	ImageURL   string
	PrevURL    string
	NextURL    string
	CloseURL   string
	HidePrev   bool
	HideNext   bool
	IsFavorite bool
}

func CategoryURL(categoryID, categoryName string) string {
	query := url.Values{}

	if categoryName != "" {
		query.Set("categoryName", categoryName)
	}

	result := "/category/" + url.PathEscape(categoryID)

	if encoded := query.Encode(); encoded != "" {
		result += "?" + encoded
	}

	return result
}

func SlideURL(categoryID, categoryName string, state navigation.State) string {
	base := CategoryURL(categoryID, categoryName)

	if !state.IsOpen() {
		return base
	}

	separator := "?"
	if categoryName != "" {
		separator = "&"
	}

	return fmt.Sprintf("%s%simage=%d", base, separator, state.CurrentIndex)
}
