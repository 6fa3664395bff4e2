package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrylog/pantrylog/internal/common"
	"github.com/pantrylog/pantrylog/internal/model"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and lists", func(t *testing.T) {
		store := createTestStorage(t)

		user, err := store.CreateUser(ctx, "Ana", "a@x.com")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "Ana", user.Name)

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, user.ID, users[0].ID)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		store := createTestStorage(t)

		_, err := store.CreateUser(ctx, "Ana", "a@x.com")
		require.NoError(t, err)

		_, err = store.CreateUser(ctx, "Other Ana", "A@X.COM")
		require.ErrorIs(t, err, common.ErrDuplicateEntry)
	})

	t.Run("rejects empty fields", func(t *testing.T) {
		store := createTestStorage(t)

		_, err := store.CreateUser(ctx, "", "a@x.com")
		require.Error(t, err)
		_, err = store.CreateUser(ctx, "Ana", "")
		require.Error(t, err)
	})
}

func TestCreateShop(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and lists ordered by name", func(t *testing.T) {
		store := createTestStorage(t)

		_, err := store.CreateShop(ctx, "Walmart")
		require.NoError(t, err)
		_, err = store.CreateShop(ctx, "Aldi")
		require.NoError(t, err)

		shops, err := store.ListShops(ctx)
		require.NoError(t, err)
		require.Len(t, shops, 2)
		assert.Equal(t, "Aldi", shops[0].Name)
		assert.Equal(t, "Walmart", shops[1].Name)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		store := createTestStorage(t)

		_, err := store.CreateShop(ctx, "Market")
		require.NoError(t, err)
		_, err = store.CreateShop(ctx, "Market")
		require.ErrorIs(t, err, common.ErrDuplicateEntry)
	})
}

func TestGetOrCreateCategory(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	first, err := store.GetOrCreateCategory(ctx, "Dairy")
	require.NoError(t, err)

	// Same exact name returns the existing row instead of erroring.
	second, err := store.GetOrCreateCategory(ctx, "Dairy")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("with category", func(t *testing.T) {
		store := createTestStorage(t)

		category, err := store.GetOrCreateCategory(ctx, "Dairy")
		require.NoError(t, err)

		product, err := store.CreateProduct(ctx, model.ProductInput{
			Name:       "Milk",
			UnitType:   model.UnitTypeLiter,
			CategoryID: &category.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, product.CategoryID)
		assert.Equal(t, category.ID, *product.CategoryID)
	})

	t.Run("without category, defaults unit type", func(t *testing.T) {
		store := createTestStorage(t)

		product, err := store.CreateProduct(ctx, model.ProductInput{Name: "Bread"})
		require.NoError(t, err)
		assert.Nil(t, product.CategoryID)
		assert.Equal(t, model.UnitTypeUnit, product.UnitType)

		products, err := store.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, model.UnitTypeUnit, products[0].UnitType)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		store := createTestStorage(t)

		missing := int64(999)
		_, err := store.CreateProduct(ctx, model.ProductInput{Name: "Milk", CategoryID: &missing})
		require.Error(t, err)
	})

	t.Run("rejects unknown unit type", func(t *testing.T) {
		store := createTestStorage(t)

		_, err := store.CreateProduct(ctx, model.ProductInput{Name: "Milk", UnitType: "barrel"})
		require.Error(t, err)
	})
}
