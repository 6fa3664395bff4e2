package compose

import (
	"strings"

	"github.com/pantrylog/pantrylog/internal/model"
)

// PendingCategory is one category creation a compose run will perform.
// Name keeps the first-seen casing; dedup happens on the normalized form.
type PendingCategory struct {
	Name      string
	ItemCount int
}

// CategoryPlan is the deduplicated set of categories a draft's items
// would create, keyed by normalized name, in first-seen order.
type CategoryPlan struct {
	byName map[string]int
	order  []PendingCategory
}

// NormalizeName returns the form of a name used for deduplication
// comparisons: trimmed and case-folded. Never used for storage.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// PlanCategories scans items whose product is new and whose category is
// a new name, and collapses them into one pending creation per distinct
// normalized name. Items referencing an existing category id bypass the
// plan entirely. Pure function of the draft; no side effects.
func PlanCategories(items []model.LineItemDraft) CategoryPlan {
	plan := CategoryPlan{byName: make(map[string]int)}
	for _, item := range items {
		if !item.Product.IsNew() {
			continue
		}
		category := item.Product.Fields().Category
		if !category.IsNew() {
			continue
		}
		name := category.Fields().Name
		normalized := NormalizeName(name)
		if normalized == "" {
			continue
		}
		if idx, ok := plan.byName[normalized]; ok {
			plan.order[idx].ItemCount++
			continue
		}
		plan.byName[normalized] = len(plan.order)
		plan.order = append(plan.order, PendingCategory{Name: strings.TrimSpace(name), ItemCount: 1})
	}
	return plan
}

// Pending returns the planned creations in first-seen order.
func (p CategoryPlan) Pending() []PendingCategory {
	return p.order
}

// Len returns the number of distinct categories to create.
func (p CategoryPlan) Len() int {
	return len(p.order)
}

// Contains reports whether the plan includes the given name.
func (p CategoryPlan) Contains(name string) bool {
	_, ok := p.byName[NormalizeName(name)]
	return ok
}
