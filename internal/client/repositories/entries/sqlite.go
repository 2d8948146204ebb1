package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophlink/internal/client/models"
	"github.com/dmitrijs2005/gophlink/internal/common"
	"github.com/dmitrijs2005/gophlink/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, list []models.Entry) error {
	if err := r.Clear(ctx); err != nil {
		return err
	}

	// keyed by position: duplicates are stored as sent
	query := `INSERT INTO entries (position, entry_key, long_url, short_url, short_code, created_at, expired_at, qr_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for i, e := range list {
		_, err := r.db.ExecContext(ctx, query,
			i, e.Key(), e.LongURL, e.ShortURL, e.ShortCode, e.CreatedAt, e.ExpiredAt, e.QRCode)
		if err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Entry, error) {
	query := `SELECT long_url, short_url, short_code, created_at, expired_at, qr_code
		FROM entries ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.LongURL, &e.ShortURL, &e.ShortCode, &e.CreatedAt, &e.ExpiredAt, &e.QRCode); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLiteRepository) GetByKey(ctx context.Context, key string) (*models.Entry, error) {
	if key == "" {
		return nil, common.ErrorNotFound
	}
	query := `SELECT long_url, short_url, short_code, created_at, expired_at, qr_code
		FROM entries WHERE entry_key = ? OR short_code = ? ORDER BY position LIMIT 1`

	var e models.Entry
	err := r.db.QueryRowContext(ctx, query, key, key).
		Scan(&e.LongURL, &e.ShortURL, &e.ShortCode, &e.CreatedAt, &e.ExpiredAt, &e.QRCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %q: %w", key, err)
	}
	return &e, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	return nil
}
