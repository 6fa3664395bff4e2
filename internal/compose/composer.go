// Package compose implements the purchase composition core: it takes a
// draft purchase mixing existing-entity references and create-new
// intents, resolves every reference to a durable id against the backend
// collaborator, and emits a single normalized purchase payload.
//
// Resolution order is fixed: user, shop, deduplicated categories, then
// products in draft order. Category creations complete before any
// product creation that depends on them. Side effects are strictly
// additive; a failure partway through leaves earlier creations in place.
package compose

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pantrylog/pantrylog/internal/model"
	"github.com/pantrylog/pantrylog/internal/service"
)

// Composer orchestrates draft validation and reference resolution
// against a backend collaborator.
type Composer struct {
	backend service.Backend
}

// New creates a Composer backed by the given collaborator.
func New(backend service.Backend) *Composer {
	return &Composer{backend: backend}
}

// ValidateAndCompose validates the draft and resolves it into a
// normalized purchase payload, creating referenced users, shops,
// categories, and products as needed. The draft is mutated in place as
// references resolve, so a failed compose can be retried without
// duplicating already-created entities.
func (c *Composer) ValidateAndCompose(ctx context.Context, draft *model.PurchaseDraft) (*model.ResolvedPurchase, error) {
	if err := Validate(draft); err != nil {
		return nil, err
	}

	userID, err := resolveRef(ctx, &draft.User, "user",
		fmt.Sprintf("creating user %q", draft.User.Fields().Name),
		func(ctx context.Context, spec model.NewUserSpec) (int64, error) {
			user, err := c.backend.CreateUser(ctx, spec.Name, spec.Email)
			if err != nil {
				return 0, err
			}
			return user.ID, nil
		})
	if err != nil {
		return nil, err
	}

	shopID, err := resolveRef(ctx, &draft.Shop, "shop",
		fmt.Sprintf("creating shop %q", draft.Shop.Fields().Name),
		func(ctx context.Context, spec model.NewShopSpec) (int64, error) {
			shop, err := c.backend.CreateShop(ctx, spec.Name)
			if err != nil {
				return 0, err
			}
			return shop.ID, nil
		})
	if err != nil {
		return nil, err
	}

	categoryIDs, err := c.createPlannedCategories(ctx, draft.Items)
	if err != nil {
		return nil, err
	}

	items := make([]model.ResolvedItem, 0, len(draft.Items))
	for i := range draft.Items {
		productID, err := c.resolveProduct(ctx, &draft.Items[i], categoryIDs)
		if err != nil {
			return nil, err
		}
		items = append(items, model.ResolvedItem{
			ProductID: productID,
			Quantity:  draft.Items[i].Quantity,
			Price:     draft.Items[i].UnitPrice,
		})
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	total = total.Add(draft.DeliveryCost).Sub(draft.Discount).Round(2)

	date, err := model.ParseDate(draft.Date)
	if err != nil {
		// Unreachable after Validate; kept for safety.
		return nil, &ValidationError{Field: "date", Rule: "date.parseable", Message: err.Error()}
	}

	resolved := &model.ResolvedPurchase{
		UserID:       userID,
		ShopID:       shopID,
		Date:         date,
		Items:        items,
		DeliveryCost: draft.DeliveryCost,
		Discount:     draft.Discount,
		TotalAmount:  total,
	}
	slog.Debug("composed purchase draft",
		"user_id", userID,
		"shop_id", shopID,
		"items", len(items),
		"new_categories", len(categoryIDs),
		"total", total)
	return resolved, nil
}

// Submit composes the draft and creates the purchase record.
func (c *Composer) Submit(ctx context.Context, draft *model.PurchaseDraft) (*model.Purchase, error) {
	resolved, err := c.ValidateAndCompose(ctx, draft)
	if err != nil {
		return nil, err
	}
	purchase, err := c.backend.CreatePurchase(ctx, *resolved)
	if err != nil {
		return nil, &ResolutionError{Step: "creating purchase", Err: err}
	}
	slog.Info("purchase created", "id", purchase.ID, "total", purchase.TotalAmount)
	return purchase, nil
}

// Update composes the draft and replaces an existing purchase's content
// wholesale. The previous item set is fully superseded, not reconciled.
func (c *Composer) Update(ctx context.Context, id int64, draft *model.PurchaseDraft) (*model.Purchase, error) {
	resolved, err := c.ValidateAndCompose(ctx, draft)
	if err != nil {
		return nil, err
	}
	purchase, err := c.backend.UpdatePurchase(ctx, id, *resolved)
	if err != nil {
		return nil, &ResolutionError{Step: fmt.Sprintf("updating purchase %d", id), Err: err}
	}
	slog.Info("purchase updated", "id", purchase.ID, "total", purchase.TotalAmount)
	return purchase, nil
}

// createPlannedCategories runs the dedup plan and creates each pending
// category exactly once, sequentially. Returns normalized name → id.
func (c *Composer) createPlannedCategories(ctx context.Context, items []model.LineItemDraft) (map[string]int64, error) {
	plan := PlanCategories(items)
	ids := make(map[string]int64, plan.Len())
	for _, pending := range plan.Pending() {
		category, err := c.backend.CreateCategory(ctx, pending.Name)
		if err != nil {
			return nil, &ResolutionError{Step: fmt.Sprintf("creating category %q", pending.Name), Err: err}
		}
		ids[NormalizeName(pending.Name)] = category.ID
	}
	return ids, nil
}

// resolveProduct resolves one draft line's product reference. Existing
// ids pass through untouched; new products are created with their
// category id taken from the reference itself or from the plan's
// freshly created categories.
func (c *Composer) resolveProduct(ctx context.Context, item *model.LineItemDraft, categoryIDs map[string]int64) (int64, error) {
	if item.Product.IsResolved() {
		return item.Product.ResolvedID("product")
	}

	spec := item.Product.Fields()
	var categoryID *int64
	switch {
	case spec.Category.IsZero():
		// Products may exist without a category.
	case spec.Category.IsNew():
		id, ok := categoryIDs[NormalizeName(spec.Category.Fields().Name)]
		if !ok {
			return 0, &ResolutionError{
				Step: fmt.Sprintf("resolving category for product %q", spec.Name),
				Err:  fmt.Errorf("category %q missing from creation plan", spec.Category.Fields().Name),
			}
		}
		categoryID = &id
	default:
		id, err := spec.Category.ResolvedID("category")
		if err != nil {
			return 0, err
		}
		categoryID = &id
	}

	unitType := spec.UnitType
	if unitType == "" {
		unitType = model.UnitTypeUnit
	}
	product, err := c.backend.CreateProduct(ctx, model.ProductInput{
		Name:       spec.Name,
		Reference:  spec.Reference,
		UnitType:   unitType,
		CategoryID: categoryID,
	})
	if err != nil {
		return 0, &ResolutionError{Step: fmt.Sprintf("creating product %q", spec.Name), Err: err}
	}
	item.Product.Resolve(product.ID)
	return product.ID, nil
}
