package model

import "github.com/shopspring/decimal"

// DateLayout is the wire format for purchase dates.
const DateLayout = "2006-01-02"

// NewUserSpec holds the fields for a user to be created during resolution.
type NewUserSpec struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewShopSpec holds the fields for a shop to be created during resolution.
type NewShopSpec struct {
	Name string `json:"name"`
}

// NewCategorySpec holds the fields for a category to be created during
// resolution. Deduplication compares names trimmed and case-folded.
type NewCategorySpec struct {
	Name string `json:"name"`
}

// NewProductSpec holds the fields for a product to be created during
// resolution. Category is optional: a product may exist without one.
type NewProductSpec struct {
	Name      string               `json:"name"`
	Reference string               `json:"reference,omitempty"`
	UnitType  UnitType             `json:"unitType"`
	Category  Ref[NewCategorySpec] `json:"category"`
}

// LineItemDraft is one line of a purchase being composed.
type LineItemDraft struct {
	Product   Ref[NewProductSpec] `json:"product"`
	Quantity  decimal.Decimal     `json:"quantity"`
	UnitPrice decimal.Decimal     `json:"unitPrice"`
}

// PurchaseDraft is the in-memory representation of a purchase before any
// backend side effect. Drafts are ephemeral: they live for one
// compose-and-submit cycle only.
type PurchaseDraft struct {
	Date         string           `json:"date"`
	User         Ref[NewUserSpec] `json:"user"`
	Shop         Ref[NewShopSpec] `json:"shop"`
	Items        []LineItemDraft  `json:"items"`
	DeliveryCost decimal.Decimal  `json:"deliveryCost"`
	Discount     decimal.Decimal  `json:"discount"`
}
