package ofx

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pantrylog/pantrylog/internal/model"
)

// ReferenceData provides the current shop and product lists. The
// backend client satisfies this: its caches grow as submissions create
// entities, so a merchant created by one charge is found by the next.
type ReferenceData interface {
	Shops() []model.Shop
	Products() []model.Product
}

// DraftBuilder turns statement charges into one-item purchase drafts.
// Known shops and products are matched case-insensitively against the
// reference data at build time; anything unknown becomes a new-entity
// reference and is created during composition.
type DraftBuilder struct {
	data   ReferenceData
	seen   map[string]bool
	UserID int64
}

// NewDraftBuilder creates a builder importing charges for the given user.
func NewDraftBuilder(userID int64, data ReferenceData) *DraftBuilder {
	return &DraftBuilder{
		UserID: userID,
		data:   data,
		seen:   make(map[string]bool),
	}
}

// Build converts one charge to a draft. The second return is false when
// the charge is a duplicate of one already built in this run.
func (b *DraftBuilder) Build(charge Charge) (model.PurchaseDraft, bool) {
	if b.seen[charge.Hash] {
		return model.PurchaseDraft{}, false
	}
	b.seen[charge.Hash] = true

	draft := model.PurchaseDraft{
		Date: charge.Date.Format(model.DateLayout),
		User: model.ExistingRef[model.NewUserSpec](b.UserID),
		Shop: b.shopRef(charge.Payee),
		Items: []model.LineItemDraft{
			{
				Product:   b.productRef(charge.Payee),
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: charge.Amount,
			},
		},
	}
	return draft, true
}

func (b *DraftBuilder) shopRef(payee string) model.Ref[model.NewShopSpec] {
	for _, shop := range b.data.Shops() {
		if strings.EqualFold(strings.TrimSpace(shop.Name), payee) {
			return model.ExistingRef[model.NewShopSpec](shop.ID)
		}
	}
	return model.NewRef(model.NewShopSpec{Name: payee})
}

func (b *DraftBuilder) productRef(payee string) model.Ref[model.NewProductSpec] {
	for _, product := range b.data.Products() {
		if strings.EqualFold(strings.TrimSpace(product.Name), payee) {
			return model.ExistingRef[model.NewProductSpec](product.ID)
		}
	}
	// Statement charges have no line-level detail, so the whole bill is
	// one product named after the merchant.
	return model.NewRef(model.NewProductSpec{
		Name:     payee,
		UnitType: model.UnitTypeBill,
	})
}
