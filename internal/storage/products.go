package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pantrylog/pantrylog/internal/model"
)

// CreateProduct creates a new product. The category is optional but
// must exist when given.
func (s *SQLiteStorage) CreateProduct(ctx context.Context, input model.ProductInput) (*model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(input.Name, "name"); err != nil {
		return nil, err
	}
	unitType := input.UnitType
	if unitType == "" {
		unitType = model.UnitTypeUnit
	}
	if !unitType.IsValid() {
		return nil, fmt.Errorf("invalid unit type %q", unitType)
	}

	if input.CategoryID != nil {
		var exists int64
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM categories WHERE id = ?`, *input.CategoryID).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("category %d does not exist", *input.CategoryID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, reference, category_id, unit_type, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		input.Name, nullableString(input.Reference), input.CategoryID, string(unitType), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get product ID: %w", err)
	}

	slog.Info("created new product", "name", input.Name, "id", id, "unit_type", unitType)
	return &model.Product{
		ID:         id,
		Name:       input.Name,
		Reference:  input.Reference,
		CategoryID: input.CategoryID,
		UnitType:   unitType,
		CreatedAt:  now,
	}, nil
}

// ListProducts returns all products ordered by name.
func (s *SQLiteStorage) ListProducts(ctx context.Context) ([]model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, reference, category_id, unit_type, created_at
		 FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var product model.Product
		var reference sql.NullString
		var categoryID sql.NullInt64
		var unitType string
		if err := rows.Scan(&product.ID, &product.Name, &reference, &categoryID, &unitType, &product.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		product.Reference = reference.String
		if categoryID.Valid {
			product.CategoryID = &categoryID.Int64
		}
		product.UnitType = model.UnitType(unitType)
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	slog.Debug("retrieved products", "count", len(products))
	return products, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
