// Package service defines the contracts between the composition core,
// the backend collaborator, and the persistence layer behind the server.
package service

import (
	"context"
	"time"

	"github.com/pantrylog/pantrylog/internal/model"
)

// Backend is the collaborator the purchase composer resolves entities
// against. One resource group per entity kind; every create returns the
// persisted entity including its assigned id.
type Backend interface {
	CreateUser(ctx context.Context, name, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	CreateShop(ctx context.Context, name string) (*model.Shop, error)
	ListShops(ctx context.Context) ([]model.Shop, error)

	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	CreateProduct(ctx context.Context, input model.ProductInput) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)

	CreatePurchase(ctx context.Context, purchase model.ResolvedPurchase) (*model.Purchase, error)
	UpdatePurchase(ctx context.Context, id int64, purchase model.ResolvedPurchase) (*model.Purchase, error)
	DeletePurchase(ctx context.Context, id int64) error
	ListPurchases(ctx context.Context) ([]model.Purchase, error)
}

// Storage is the persistence contract behind the HTTP server.
type Storage interface {
	CreateUser(ctx context.Context, name, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	CreateShop(ctx context.Context, name string) (*model.Shop, error)
	ListShops(ctx context.Context) ([]model.Shop, error)

	// GetOrCreateCategory returns the category with the given name if one
	// exists, creating it otherwise. Name comparison is exact; the
	// composition core normalizes before calling.
	GetOrCreateCategory(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	CreateProduct(ctx context.Context, input model.ProductInput) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)

	CreatePurchase(ctx context.Context, purchase model.ResolvedPurchase) (*model.Purchase, error)
	UpdatePurchase(ctx context.Context, id int64, purchase model.ResolvedPurchase) (*model.Purchase, error)
	GetPurchase(ctx context.Context, id int64) (*model.Purchase, error)
	DeletePurchase(ctx context.Context, id int64) error
	ListPurchases(ctx context.Context) ([]model.Purchase, error)

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for transport operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
