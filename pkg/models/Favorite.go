package models

import "time"

type Favorite struct {
	VisitorID string    `db:"visitor_id"`
	ItemID    string    `db:"item_id"`
	CreatedAt time.Time `db:"created_at"`
}
