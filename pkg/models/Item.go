package models

const (
	RenditionThumbnail = "Thumbnail"
	RenditionSmall     = "Small"
	RenditionMedium    = "Medium"
	RenditionLarge     = "Large"
	RenditionNative    = "Native"
)

type Item struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	RenditionURLs map[string]string `json:"renditionUrls"`
	IsFavorite    bool              `json:"isFavorite"`
}

/*
RenditionURL returns the URL of the first rendition found in names.
Useful for "large, or native if there is no large".
*/
func (i Item) RenditionURL(names ...string) string {
	for _, name := range names {
		if u, ok := i.RenditionURLs[name]; ok && u != "" {
			return u
		}
	}

	return ""
}
