package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pantrylog/pantrylog/internal/common"
	"github.com/pantrylog/pantrylog/internal/model"
)

// CreateShop creates a new shop. Shop names are unique; creating a
// second shop with the same name returns common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateShop(ctx context.Context, name string) (*model.Shop, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var existingID int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM shops WHERE name = ?`, name).Scan(&existingID)
	if err == nil {
		return nil, fmt.Errorf("shop %q: %w", name, common.ErrDuplicateEntry)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check existing shop: %w", err)
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO shops (name, created_at) VALUES (?, ?)`, name, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get shop ID: %w", err)
	}

	slog.Info("created new shop", "name", name, "id", id)
	return &model.Shop{ID: id, Name: name, CreatedAt: now}, nil
}

// ListShops returns all shops ordered by name.
func (s *SQLiteStorage) ListShops(ctx context.Context) ([]model.Shop, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM shops ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shops: %w", err)
	}
	defer rows.Close()

	var shops []model.Shop
	for rows.Next() {
		var shop model.Shop
		if err := rows.Scan(&shop.ID, &shop.Name, &shop.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, shop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shops: %w", err)
	}

	slog.Debug("retrieved shops", "count", len(shops))
	return shops, nil
}
