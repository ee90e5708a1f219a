package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/rfberaldo/sqlz"
)

type FavoriteServicer interface {
	GetFavoriteItemIDs(visitorID string) ([]string, error)
	ToggleFavorite(visitorID, itemID string) (bool, error)
}

type FavoriteServiceConfig struct {
	DB *sqlz.DB
}

type FavoriteService struct {
	db *sqlz.DB
}

func NewFavoriteService(config FavoriteServiceConfig) FavoriteService {
	return FavoriteService{
		db: config.DB,
	}
}

func (s FavoriteService) GetFavoriteItemIDs(visitorID string) ([]string, error) {
	var (
		err       error
		favorites []models.Favorite
	)

	sql := `
SELECT
	visitor_id
	, item_id
FROM favorites
WHERE 1=1
	AND visitor_id=?
ORDER BY created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.Query(ctx, &favorites, sql, visitorID); err != nil && !sqlz.IsNotFound(err) {
		return nil, fmt.Errorf("error querying for favorites for visitor %s: %w", visitorID, err)
	}

	result := make([]string, 0, len(favorites))

	for _, favorite := range favorites {
		result = append(result, favorite.ItemID)
	}

	return result, nil
}

/*
ToggleFavorite adds the item to the visitor's favorites, or removes it if
it is already there. It returns true when the item was a favorite before
the call.
*/
func (s FavoriteService) ToggleFavorite(visitorID, itemID string) (bool, error) {
	var (
		err      error
		exists   bool
		favorite models.Favorite
	)

	sql := `
SELECT
	visitor_id
	, item_id
FROM favorites
WHERE 1=1
	AND visitor_id = ?
	AND item_id = ?
`

	params := []any{
		visitorID,
		itemID,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = s.db.QueryRow(ctx, &favorite, sql, params...); err != nil {
		if !sqlz.IsNotFound(err) {
			return false, fmt.Errorf("error checking if favorite exists for visitor %s, item %s: %w", visitorID, itemID, err)
		}
	} else {
		exists = true
	}

	if exists {
		sql = `
DELETE FROM favorites
WHERE 1=1
	AND visitor_id = ?
	AND item_id = ?
`
		if _, err = s.db.Exec(ctx, sql, params...); err != nil {
			return false, fmt.Errorf("error removing favorite for visitor %s, item %s: %w", visitorID, itemID, err)
		}

		return true, nil
	}

	sql = `
INSERT INTO favorites (
	visitor_id,
	item_id,
	created_at
) VALUES (?, ?, ?)
`
	if _, err = s.db.Exec(ctx, sql, visitorID, itemID, time.Now().UTC()); err != nil {
		return false, fmt.Errorf("error adding favorite for visitor %s, item %s: %w", visitorID, itemID, err)
	}

	return false, nil
}
