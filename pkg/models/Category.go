package models

/*
Taxonomy is a top-level classification. It is only used to discover
categories and never leaves the aggregation pipeline.
*/
type Taxonomy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Items        []Item `json:"items"`
	TotalResults int    `json:"totalResults"`
}
