package compose

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pantrylog/pantrylog/internal/model"
)

// Validate checks a draft for structural problems, failing fast on the
// first violation. No backend call happens before validation passes.
func Validate(draft *model.PurchaseDraft) error {
	if err := validateUserRef(draft.User); err != nil {
		return err
	}
	if err := validateShopRef(draft.Shop); err != nil {
		return err
	}
	if draft.Date == "" {
		return &ValidationError{Field: "date", Rule: "required", Message: "purchase date is required"}
	}
	if _, err := model.ParseDate(draft.Date); err != nil {
		return &ValidationError{Field: "date", Rule: "date.parseable", Message: fmt.Sprintf("cannot parse %q as a date (want YYYY-MM-DD)", draft.Date)}
	}
	if len(draft.Items) == 0 {
		return &ValidationError{Field: "items", Rule: "items.nonEmpty", Message: "a purchase needs at least one item"}
	}
	for i := range draft.Items {
		if err := validateItem(i, &draft.Items[i]); err != nil {
			return err
		}
	}
	if draft.DeliveryCost.IsNegative() {
		return &ValidationError{Field: "deliveryCost", Rule: "nonNegative", Message: "delivery cost cannot be negative"}
	}
	if draft.Discount.IsNegative() {
		return &ValidationError{Field: "discount", Rule: "nonNegative", Message: "discount cannot be negative"}
	}
	gross := decimal.Zero
	for _, item := range draft.Items {
		gross = gross.Add(item.Quantity.Mul(item.UnitPrice))
	}
	if draft.Discount.GreaterThan(gross.Add(draft.DeliveryCost)) {
		return &ValidationError{Field: "discount", Rule: "discount.exceedsTotal", Message: "discount is larger than the purchase total"}
	}
	return nil
}

// validateExistingID rejects existing-entity references carrying a
// non-positive id, which could otherwise only fail at the backend.
func validateExistingID[F any](ref model.Ref[F], field string) error {
	if ref.IsZero() || ref.IsNew() {
		return nil
	}
	id, err := ref.ResolvedID(field)
	if err != nil || id <= 0 {
		return &ValidationError{Field: field, Rule: "id.positive", Message: "existing-entity id must be positive"}
	}
	return nil
}

func validateUserRef(ref model.Ref[model.NewUserSpec]) error {
	if ref.IsZero() {
		return &ValidationError{Field: "user", Rule: "required", Message: "a user reference is required"}
	}
	if !ref.IsNew() {
		return validateExistingID(ref, "user")
	}
	spec := ref.Fields()
	if strings.TrimSpace(spec.Name) == "" {
		return &ValidationError{Field: "user.name", Rule: "required", Message: "new user needs a name"}
	}
	if strings.TrimSpace(spec.Email) == "" {
		return &ValidationError{Field: "user.email", Rule: "required", Message: "new user needs an email"}
	}
	return nil
}

func validateShopRef(ref model.Ref[model.NewShopSpec]) error {
	if ref.IsZero() {
		return &ValidationError{Field: "shop", Rule: "required", Message: "a shop reference is required"}
	}
	if ref.IsNew() && strings.TrimSpace(ref.Fields().Name) == "" {
		return &ValidationError{Field: "shop.name", Rule: "required", Message: "new shop needs a name"}
	}
	return validateExistingID(ref, "shop")
}

func validateItem(i int, item *model.LineItemDraft) error {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

	if !item.Quantity.IsPositive() {
		return &ValidationError{Field: field("quantity"), Rule: "positive", Message: "quantity must be greater than zero"}
	}
	if !item.UnitPrice.IsPositive() {
		return &ValidationError{Field: field("unitPrice"), Rule: "positive", Message: "unit price must be greater than zero"}
	}
	if item.Product.IsZero() {
		return &ValidationError{Field: field("product"), Rule: "required", Message: "a product reference is required"}
	}
	if !item.Product.IsNew() {
		return validateExistingID(item.Product, field("product"))
	}
	spec := item.Product.Fields()
	if strings.TrimSpace(spec.Name) == "" {
		return &ValidationError{Field: field("product.name"), Rule: "required", Message: "new product needs a name"}
	}
	if spec.UnitType != "" && !spec.UnitType.IsValid() {
		return &ValidationError{Field: field("product.unitType"), Rule: "unitType.known", Message: fmt.Sprintf("unknown unit type %q", spec.UnitType)}
	}
	if spec.Category.IsNew() && strings.TrimSpace(spec.Category.Fields().Name) == "" {
		return &ValidationError{Field: field("product.category.name"), Rule: "required", Message: "new category needs a name"}
	}
	return validateExistingID(spec.Category, field("product.category"))
}
