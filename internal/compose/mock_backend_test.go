package compose

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pantrylog/pantrylog/internal/model"
)

// mockBackend is an in-memory service.Backend that records every call
// so tests can assert on how many creations a compose run issued.
type mockBackend struct {
	mu         sync.Mutex
	users      []model.User
	shops      []model.Shop
	categories []model.Category
	products   []model.Product
	purchases  []model.Purchase

	createCalls map[string]int

	failOn string // step name to fail at, e.g. "category:Snacks"
	nextID int64
}

func newMockBackend() *mockBackend {
	return &mockBackend{createCalls: make(map[string]int)}
}

func (m *mockBackend) record(kind string) {
	m.createCalls[kind]++
}

func (m *mockBackend) creates(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls[kind]
}

func (m *mockBackend) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockBackend) fail(step string) error {
	if m.failOn == step {
		return fmt.Errorf("backend unavailable")
	}
	return nil
}

func (m *mockBackend) CreateUser(_ context.Context, name, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("user")
	if err := m.fail("user:" + name); err != nil {
		return nil, err
	}
	user := model.User{ID: m.id(), Name: name, Email: email}
	m.users = append(m.users, user)
	return &user, nil
}

func (m *mockBackend) ListUsers(_ context.Context) ([]model.User, error) {
	return m.users, nil
}

func (m *mockBackend) CreateShop(_ context.Context, name string) (*model.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("shop")
	if err := m.fail("shop:" + name); err != nil {
		return nil, err
	}
	shop := model.Shop{ID: m.id(), Name: name}
	m.shops = append(m.shops, shop)
	return &shop, nil
}

func (m *mockBackend) ListShops(_ context.Context) ([]model.Shop, error) {
	return m.shops, nil
}

func (m *mockBackend) CreateCategory(_ context.Context, name string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("category")
	if err := m.fail("category:" + name); err != nil {
		return nil, err
	}
	// Get-or-create on exact name, mirroring the real backend.
	for _, existing := range m.categories {
		if existing.Name == name {
			return &existing, nil
		}
	}
	category := model.Category{ID: m.id(), Name: name}
	m.categories = append(m.categories, category)
	return &category, nil
}

func (m *mockBackend) ListCategories(_ context.Context) ([]model.Category, error) {
	return m.categories, nil
}

func (m *mockBackend) CreateProduct(_ context.Context, input model.ProductInput) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("product")
	if err := m.fail("product:" + input.Name); err != nil {
		return nil, err
	}
	product := model.Product{
		ID:         m.id(),
		Name:       input.Name,
		Reference:  input.Reference,
		UnitType:   input.UnitType,
		CategoryID: input.CategoryID,
	}
	m.products = append(m.products, product)
	return &product, nil
}

func (m *mockBackend) ListProducts(_ context.Context) ([]model.Product, error) {
	return m.products, nil
}

func (m *mockBackend) CreatePurchase(_ context.Context, resolved model.ResolvedPurchase) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("purchase")
	if err := m.fail("purchase"); err != nil {
		return nil, err
	}
	purchase := purchaseFromResolved(m.id(), resolved)
	m.purchases = append(m.purchases, purchase)
	return &purchase, nil
}

func (m *mockBackend) UpdatePurchase(_ context.Context, id int64, resolved model.ResolvedPurchase) (*model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("purchase.update")
	for i := range m.purchases {
		if m.purchases[i].ID == id {
			m.purchases[i] = purchaseFromResolved(id, resolved)
			return &m.purchases[i], nil
		}
	}
	return nil, fmt.Errorf("purchase %d not found", id)
}

func (m *mockBackend) DeletePurchase(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.purchases {
		if m.purchases[i].ID == id {
			m.purchases = append(m.purchases[:i], m.purchases[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("purchase %d not found", id)
}

func (m *mockBackend) ListPurchases(_ context.Context) ([]model.Purchase, error) {
	return m.purchases, nil
}

func (m *mockBackend) categoryByName(name string) *model.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, category := range m.categories {
		if strings.EqualFold(category.Name, name) {
			return &category
		}
	}
	return nil
}

func purchaseFromResolved(id int64, resolved model.ResolvedPurchase) model.Purchase {
	items := make([]model.PurchaseItem, 0, len(resolved.Items))
	for i, item := range resolved.Items {
		items = append(items, model.PurchaseItem{
			ID:        int64(i + 1),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Subtotal:  item.Subtotal().Round(2),
		})
	}
	return model.Purchase{
		ID:           id,
		UserID:       resolved.UserID,
		ShopID:       resolved.ShopID,
		Date:         resolved.Date,
		Items:        items,
		DeliveryCost: resolved.DeliveryCost,
		Discount:     resolved.Discount,
		TotalAmount:  resolved.TotalAmount,
	}
}
