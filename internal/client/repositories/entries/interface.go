package entries

import (
	"context"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
)

// Repository describes the operations on the cached entry list.
type Repository interface {
	// ReplaceAll drops the cached list and stores the given one. Bind the
	// repository to a transaction to make the swap atomic.
	ReplaceAll(ctx context.Context, list []models.Entry) error

	// GetAll returns the cached list in the order the server sent it.
	GetAll(ctx context.Context) ([]models.Entry, error)

	// GetByKey returns one entry by short URL (or short code), the first in
	// list order when the server sent duplicates.
	// common.ErrorNotFound is returned when it is not cached.
	GetByKey(ctx context.Context, key string) (*models.Entry, error)

	// Clear empties the cache.
	Clear(ctx context.Context) error
}
