package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResolvedItem is one purchase line after every entity reference has
// been resolved to a durable id.
type ResolvedItem struct {
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	ProductID int64           `json:"productId"`
}

// Subtotal returns quantity * price at full precision. Rounding happens
// only when a total is finalized, never per line.
func (i ResolvedItem) Subtotal() decimal.Decimal {
	return i.Quantity.Mul(i.Price)
}

// ResolvedPurchase is the normalized payload a composed draft reduces
// to. Every id in it is confirmed to exist.
type ResolvedPurchase struct {
	Date         Date            `json:"date"`
	Items        []ResolvedItem  `json:"items"`
	DeliveryCost decimal.Decimal `json:"deliveryCost"`
	Discount     decimal.Decimal `json:"discount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	UserID       int64           `json:"userId"`
	ShopID       int64           `json:"shopId"`
}

// PurchaseItem is a persisted purchase line as the backend returns it.
type PurchaseItem struct {
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
}

// Purchase is a persisted purchase as the backend returns it, including
// the server-computed per-item subtotals and total.
type Purchase struct {
	Date         Date            `json:"date"`
	CreatedAt    time.Time       `json:"createdAt,omitempty"`
	Items        []PurchaseItem  `json:"items"`
	DeliveryCost decimal.Decimal `json:"deliveryCost"`
	Discount     decimal.Decimal `json:"discount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	ID           int64           `json:"id"`
	UserID       int64           `json:"userId"`
	ShopID       int64           `json:"shopId"`
}
