package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrylog/pantrylog/internal/api"
	"github.com/pantrylog/pantrylog/internal/common"
	"github.com/pantrylog/pantrylog/internal/model"
	"github.com/pantrylog/pantrylog/internal/server"
	"github.com/pantrylog/pantrylog/internal/testutil"
)

func setupBackend(t *testing.T) string {
	t.Helper()
	handler := server.New(testutil.SetupTestDB(t))
	ts := httptest.NewServer(handler.Router())
	t.Cleanup(ts.Close)
	return ts.URL
}

func setupClient(t *testing.T) *api.Client {
	t.Helper()
	return api.NewClient(setupBackend(t))
}

func TestClientCreateAppendsToCache(t *testing.T) {
	ctx := context.Background()
	client := setupClient(t)

	require.Empty(t, client.Users())

	user, err := client.CreateUser(ctx, "Ana", "a@x.com")
	require.NoError(t, err)

	// Cache reflects the creation without a refetch.
	users := client.Users()
	require.Len(t, users, 1)
	assert.Equal(t, user.ID, users[0].ID)

	shop, err := client.CreateShop(ctx, "Market")
	require.NoError(t, err)
	require.Len(t, client.Shops(), 1)
	assert.Equal(t, shop.ID, client.Shops()[0].ID)
}

func TestClientCategoryGetOrCreateDoesNotDuplicateCache(t *testing.T) {
	ctx := context.Background()
	client := setupClient(t)

	first, err := client.CreateCategory(ctx, "Dairy")
	require.NoError(t, err)
	second, err := client.CreateCategory(ctx, "Dairy")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, client.Categories(), 1)
}

func TestClientSurfacesBackendDetail(t *testing.T) {
	ctx := context.Background()
	client := setupClient(t)

	_, err := client.CreateUser(ctx, "Ana", "a@x.com")
	require.NoError(t, err)

	_, err = client.CreateUser(ctx, "Other", "a@x.com")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Detail, "duplicate")
}

func TestClientGenericMessageWithoutDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	client := api.NewClient(ts.URL)
	_, err := client.ListUsers(context.Background())
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Error(), "operation failed")

	// Gateway errors are transient and marked retryable.
	assert.True(t, common.IsRetryable(err))
}

func TestClientValidationErrorsAreNotRetryable(t *testing.T) {
	ctx := context.Background()
	client := setupClient(t)

	_, err := client.CreateUser(ctx, "", "")
	require.Error(t, err)
	assert.False(t, common.IsRetryable(err))
}

func TestClientPurchaseRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := setupClient(t)

	user, err := client.CreateUser(ctx, "Ana", "a@x.com")
	require.NoError(t, err)
	shop, err := client.CreateShop(ctx, "Market")
	require.NoError(t, err)
	product, err := client.CreateProduct(ctx, model.ProductInput{Name: "Milk", UnitType: model.UnitTypeLiter})
	require.NoError(t, err)

	date, err := model.ParseDate("2024-03-15")
	require.NoError(t, err)

	created, err := client.CreatePurchase(ctx, model.ResolvedPurchase{
		UserID: user.ID,
		ShopID: shop.ID,
		Date:   date,
		Items: []model.ResolvedItem{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(2), Price: decimal.RequireFromString("1.50")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "3.00", created.TotalAmount.StringFixed(2))

	listed, err := client.ListPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	require.NoError(t, client.DeletePurchase(ctx, created.ID))
	listed, err = client.ListPurchases(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestClientRefreshReferenceData(t *testing.T) {
	ctx := context.Background()
	url := setupBackend(t)

	seed := api.NewClient(url)
	_, err := seed.CreateUser(ctx, "Ana", "a@x.com")
	require.NoError(t, err)
	_, err = seed.CreateShop(ctx, "Market")
	require.NoError(t, err)
	_, err = seed.CreateProduct(ctx, model.ProductInput{Name: "Milk"})
	require.NoError(t, err)

	// A fresh client sees nothing until it refreshes.
	fresh := api.NewClient(url)
	require.Empty(t, fresh.Users())

	require.NoError(t, fresh.RefreshReferenceData(ctx))
	assert.Len(t, fresh.Users(), 1)
	assert.Len(t, fresh.Shops(), 1)
	assert.Len(t, fresh.Products(), 1)
	assert.Empty(t, fresh.Categories())
}
