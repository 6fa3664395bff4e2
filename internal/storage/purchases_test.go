package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrylog/pantrylog/internal/common"
	"github.com/pantrylog/pantrylog/internal/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// seedPurchaseRefs creates the user, shop, and products a purchase needs.
func seedPurchaseRefs(t *testing.T, store *SQLiteStorage) (userID, shopID, milkID, breadID int64) {
	t.Helper()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "Ana", "a@x.com")
	require.NoError(t, err)
	shop, err := store.CreateShop(ctx, "Market")
	require.NoError(t, err)
	milk, err := store.CreateProduct(ctx, model.ProductInput{Name: "Milk", UnitType: model.UnitTypeLiter})
	require.NoError(t, err)
	bread, err := store.CreateProduct(ctx, model.ProductInput{Name: "Bread"})
	require.NoError(t, err)
	return user.ID, shop.ID, milk.ID, bread.ID
}

func TestCreatePurchaseComputesSubtotalsAndTotal(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	userID, shopID, milkID, breadID := seedPurchaseRefs(t, store)

	date, err := model.ParseDate("2024-03-15")
	require.NoError(t, err)

	purchase, err := store.CreatePurchase(ctx, model.ResolvedPurchase{
		UserID: userID,
		ShopID: shopID,
		Date:   date,
		Items: []model.ResolvedItem{
			{ProductID: milkID, Quantity: dec(t, "2"), Price: dec(t, "1.50")},
			{ProductID: breadID, Quantity: dec(t, "1"), Price: dec(t, "2.35")},
		},
	})
	require.NoError(t, err)

	require.Len(t, purchase.Items, 2)
	assert.Equal(t, "3.00", purchase.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "2.35", purchase.Items[1].Subtotal.StringFixed(2))
	assert.Equal(t, "5.35", purchase.TotalAmount.StringFixed(2))

	// Round-trips through TEXT columns without losing precision.
	loaded, err := store.GetPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.35", loaded.TotalAmount.StringFixed(2))
	assert.Equal(t, "2024-03-15", loaded.Date.String())
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, milkID, loaded.Items[0].ProductID)
}

func TestCreatePurchaseWithDeliveryAndDiscount(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	userID, shopID, milkID, _ := seedPurchaseRefs(t, store)

	date, err := model.ParseDate("2024-03-15")
	require.NoError(t, err)

	purchase, err := store.CreatePurchase(ctx, model.ResolvedPurchase{
		UserID:       userID,
		ShopID:       shopID,
		Date:         date,
		DeliveryCost: dec(t, "4.00"),
		Discount:     dec(t, "0.50"),
		Items: []model.ResolvedItem{
			{ProductID: milkID, Quantity: dec(t, "2"), Price: dec(t, "1.50")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "6.50", purchase.TotalAmount.StringFixed(2))
}

func TestUpdatePurchaseReplacesItems(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	userID, shopID, milkID, breadID := seedPurchaseRefs(t, store)

	date, err := model.ParseDate("2024-03-15")
	require.NoError(t, err)

	created, err := store.CreatePurchase(ctx, model.ResolvedPurchase{
		UserID: userID,
		ShopID: shopID,
		Date:   date,
		Items: []model.ResolvedItem{
			{ProductID: milkID, Quantity: dec(t, "2"), Price: dec(t, "1.50")},
			{ProductID: breadID, Quantity: dec(t, "1"), Price: dec(t, "2.35")},
		},
	})
	require.NoError(t, err)

	updated, err := store.UpdatePurchase(ctx, created.ID, model.ResolvedPurchase{
		UserID: userID,
		ShopID: shopID,
		Date:   date,
		Items: []model.ResolvedItem{
			{ProductID: breadID, Quantity: dec(t, "3"), Price: dec(t, "2.00")},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, breadID, updated.Items[0].ProductID)
	assert.Equal(t, "6.00", updated.TotalAmount.StringFixed(2))

	// Old items are gone, not merged.
	loaded, err := store.GetPurchase(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, breadID, loaded.Items[0].ProductID)
}

func TestUpdatePurchaseNotFound(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	userID, shopID, milkID, _ := seedPurchaseRefs(t, store)

	date, err := model.ParseDate("2024-03-15")
	require.NoError(t, err)

	_, err = store.UpdatePurchase(ctx, 999, model.ResolvedPurchase{
		UserID: userID,
		ShopID: shopID,
		Date:   date,
		Items:  []model.ResolvedItem{{ProductID: milkID, Quantity: dec(t, "1"), Price: dec(t, "1.00")}},
	})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeletePurchase(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	userID, shopID, milkID, _ := seedPurchaseRefs(t, store)

	date, err := model.ParseDate("2024-03-15")
	require.NoError(t, err)

	created, err := store.CreatePurchase(ctx, model.ResolvedPurchase{
		UserID: userID,
		ShopID: shopID,
		Date:   date,
		Items:  []model.ResolvedItem{{ProductID: milkID, Quantity: dec(t, "1"), Price: dec(t, "1.00")}},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeletePurchase(ctx, created.ID))

	_, err = store.GetPurchase(ctx, created.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	require.ErrorIs(t, store.DeletePurchase(ctx, created.ID), common.ErrNotFound)
}

func TestListPurchasesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	userID, shopID, milkID, _ := seedPurchaseRefs(t, store)

	for _, day := range []string{"2024-03-10", "2024-03-20"} {
		date, err := model.ParseDate(day)
		require.NoError(t, err)
		_, err = store.CreatePurchase(ctx, model.ResolvedPurchase{
			UserID: userID,
			ShopID: shopID,
			Date:   date,
			Items:  []model.ResolvedItem{{ProductID: milkID, Quantity: dec(t, "1"), Price: dec(t, "1.00")}},
		})
		require.NoError(t, err)
	}

	purchases, err := store.ListPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	assert.Equal(t, "2024-03-20", purchases[0].Date.String())
	assert.Equal(t, "2024-03-10", purchases[1].Date.String())
}
