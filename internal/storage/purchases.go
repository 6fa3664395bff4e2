package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pantrylog/pantrylog/internal/common"
	"github.com/pantrylog/pantrylog/internal/model"
)

// CreatePurchase persists a resolved purchase and its items. Per-item
// subtotals and the total are computed here; monetary values are stored
// as text to keep decimal precision intact.
func (s *SQLiteStorage) CreatePurchase(ctx context.Context, purchase model.ResolvedPurchase) (*model.Purchase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(purchase.Items) == 0 {
		return nil, fmt.Errorf("purchase needs at least one item")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	date := purchase.Date
	if date.IsZero() {
		date = model.Today()
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (user_id, shop_id, date, delivery_cost, discount, total_amount, created_at)
		 VALUES (?, ?, ?, ?, ?, '0', ?)`,
		purchase.UserID, purchase.ShopID, date.String(),
		purchase.DeliveryCost.String(), purchase.Discount.String(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase ID: %w", err)
	}

	saved, err := s.insertItemsTx(ctx, tx, id, purchase)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	slog.Info("created new purchase", "id", id, "items", len(saved.Items), "total", saved.TotalAmount)
	saved.Date = date
	saved.CreatedAt = now
	return saved, nil
}

// UpdatePurchase replaces an existing purchase's fields and items
// wholesale. The previous item set is deleted, not reconciled.
func (s *SQLiteStorage) UpdatePurchase(ctx context.Context, id int64, purchase model.ResolvedPurchase) (*model.Purchase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(purchase.Items) == 0 {
		return nil, fmt.Errorf("purchase needs at least one item")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existingDate string
	err = tx.QueryRowContext(ctx, `SELECT date FROM purchases WHERE id = ?`, id).Scan(&existingDate)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("purchase %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase: %w", err)
	}

	date := purchase.Date
	if date.IsZero() {
		parsed, parseErr := model.ParseDate(existingDate)
		if parseErr != nil {
			return nil, fmt.Errorf("stored date corrupt for purchase %d: %w", id, parseErr)
		}
		date = parsed
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE purchases SET user_id = ?, shop_id = ?, date = ?, delivery_cost = ?, discount = ? WHERE id = ?`,
		purchase.UserID, purchase.ShopID, date.String(),
		purchase.DeliveryCost.String(), purchase.Discount.String(), id); err != nil {
		return nil, fmt.Errorf("failed to update purchase: %w", err)
	}

	// Clean old items before re-inserting the full new set.
	if _, err = tx.ExecContext(ctx, `DELETE FROM purchase_items WHERE purchase_id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete old purchase items: %w", err)
	}

	saved, err := s.insertItemsTx(ctx, tx, id, purchase)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase update: %w", err)
	}

	slog.Info("updated purchase", "id", id, "items", len(saved.Items), "total", saved.TotalAmount)
	saved.Date = date
	return saved, nil
}

// insertItemsTx inserts the item rows for a purchase, computes each
// subtotal and the purchase total, and writes the total back.
func (s *SQLiteStorage) insertItemsTx(ctx context.Context, tx *sql.Tx, purchaseID int64, purchase model.ResolvedPurchase) (*model.Purchase, error) {
	saved := &model.Purchase{
		ID:           purchaseID,
		UserID:       purchase.UserID,
		ShopID:       purchase.ShopID,
		Date:         purchase.Date,
		DeliveryCost: purchase.DeliveryCost,
		Discount:     purchase.Discount,
	}

	total := decimal.Zero
	for _, item := range purchase.Items {
		subtotal := item.Subtotal()
		total = total.Add(subtotal)

		result, err := tx.ExecContext(ctx,
			`INSERT INTO purchase_items (purchase_id, product_id, quantity, unit_price, subtotal)
			 VALUES (?, ?, ?, ?, ?)`,
			purchaseID, item.ProductID,
			item.Quantity.String(), item.Price.String(), subtotal.Round(2).String())
		if err != nil {
			return nil, fmt.Errorf("failed to create purchase item: %w", err)
		}
		itemID, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get purchase item ID: %w", err)
		}
		saved.Items = append(saved.Items, model.PurchaseItem{
			ID:        itemID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Subtotal:  subtotal.Round(2),
		})
	}

	saved.TotalAmount = total.Add(purchase.DeliveryCost).Sub(purchase.Discount).Round(2)
	if _, err := tx.ExecContext(ctx,
		`UPDATE purchases SET total_amount = ? WHERE id = ?`,
		saved.TotalAmount.String(), purchaseID); err != nil {
		return nil, fmt.Errorf("failed to store purchase total: %w", err)
	}
	return saved, nil
}

// GetPurchase returns one purchase with its items.
func (s *SQLiteStorage) GetPurchase(ctx context.Context, id int64) (*model.Purchase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, shop_id, date, delivery_cost, discount, total_amount, created_at
		 FROM purchases WHERE id = ?`, id)
	purchase, err := scanPurchase(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("purchase %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	purchase.Items = items
	return purchase, nil
}

// DeletePurchase removes a purchase and its items.
func (s *SQLiteStorage) DeletePurchase(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM purchase_items WHERE purchase_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete purchase items: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("purchase %d: %w", id, common.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit purchase delete: %w", err)
	}

	slog.Info("deleted purchase", "id", id)
	return nil
}

// ListPurchases returns all purchases with their items, newest first.
func (s *SQLiteStorage) ListPurchases(ctx context.Context) ([]model.Purchase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, shop_id, date, delivery_cost, discount, total_amount, created_at
		 FROM purchases ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}

	for i := range purchases {
		items, err := s.loadItems(ctx, purchases[i].ID)
		if err != nil {
			return nil, err
		}
		purchases[i].Items = items
	}

	slog.Debug("retrieved purchases", "count", len(purchases))
	return purchases, nil
}

func (s *SQLiteStorage) loadItems(ctx context.Context, purchaseID int64) ([]model.PurchaseItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, quantity, unit_price, subtotal
		 FROM purchase_items WHERE purchase_id = ? ORDER BY id`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase items: %w", err)
	}
	defer rows.Close()

	var items []model.PurchaseItem
	for rows.Next() {
		var item model.PurchaseItem
		var quantity, unitPrice, subtotal string
		if err := rows.Scan(&item.ID, &item.ProductID, &quantity, &unitPrice, &subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan purchase item: %w", err)
		}
		if item.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("corrupt quantity %q: %w", quantity, err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("corrupt unit price %q: %w", unitPrice, err)
		}
		if item.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("corrupt subtotal %q: %w", subtotal, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurchase(row rowScanner) (*model.Purchase, error) {
	var purchase model.Purchase
	var date, deliveryCost, discount, totalAmount string
	err := row.Scan(&purchase.ID, &purchase.UserID, &purchase.ShopID,
		&date, &deliveryCost, &discount, &totalAmount, &purchase.CreatedAt)
	if err != nil {
		return nil, err
	}
	if purchase.Date, err = model.ParseDate(date); err != nil {
		return nil, fmt.Errorf("corrupt date %q: %w", date, err)
	}
	if purchase.DeliveryCost, err = decimal.NewFromString(deliveryCost); err != nil {
		return nil, fmt.Errorf("corrupt delivery cost %q: %w", deliveryCost, err)
	}
	if purchase.Discount, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("corrupt discount %q: %w", discount, err)
	}
	if purchase.TotalAmount, err = decimal.NewFromString(totalAmount); err != nil {
		return nil, fmt.Errorf("corrupt total %q: %w", totalAmount, err)
	}
	return &purchase, nil
}
