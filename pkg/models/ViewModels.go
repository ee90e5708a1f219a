package models

type HomeViewModel struct {
	Categories    []Category        `json:"categories"`
	ThumbnailURLs map[string]string `json:"itemsThumbnailURLMap"`
}

type GridViewModel struct {
	CategoryID   string `json:"categoryId"`
	TotalResults int    `json:"totalResults"`
	Items        []Item `json:"items"`
}
