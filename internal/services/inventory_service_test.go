package services_test

import (
	"context"
	"errors"
	"testing"

	"tupperstock/internal/models"
	"tupperstock/internal/repositories"
	"tupperstock/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func stock(id, productID int64, qty int) *models.VariantStock {
	return &models.VariantStock{ID: id, ProductID: productID, Title: "Caixa", InventoryQuantity: qty, InventoryItemID: id * 10}
}

func TestInventoryService_Adjust(t *testing.T) {
	ctx := context.Background()

	t.Run("increment", func(t *testing.T) {
		variants := new(MockVariantRepository)
		svc := services.NewInventoryService(variants, feeProductID)
		variants.On("Get", ctx, int64(11)).Return(stock(11, 1, 4), nil).Once()
		variants.On("SetAvailable", ctx, int64(110), 7).Return(nil).Once()

		res, err := svc.Adjust(ctx, services.AdjustRequest{VariantID: "gid://shopify/ProductVariant/11", Quantity: 3, Action: services.ActionIncrement})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 4, res.PreviousInventory)
		assert.Equal(t, 7, res.NewInventory)
		variants.AssertExpectations(t)
	})

	t.Run("decrement floors at zero", func(t *testing.T) {
		variants := new(MockVariantRepository)
		svc := services.NewInventoryService(variants, feeProductID)
		variants.On("Get", ctx, int64(11)).Return(stock(11, 1, 2), nil).Once()
		variants.On("SetAvailable", ctx, int64(110), 0).Return(nil).Once()

		res, err := svc.Adjust(ctx, services.AdjustRequest{VariantID: "11", Quantity: 5, Action: services.ActionDecrement})
		require.NoError(t, err)
		assert.Equal(t, 0, res.NewInventory)
		variants.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		svc := services.NewInventoryService(new(MockVariantRepository), feeProductID)
		var verr *services.ValidationError

		_, err := svc.Adjust(ctx, services.AdjustRequest{VariantID: "11", Quantity: 0, Action: services.ActionIncrement})
		assert.ErrorAs(t, err, &verr)

		_, err = svc.Adjust(ctx, services.AdjustRequest{VariantID: "11", Quantity: 1, Action: "double"})
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Invalid action. Must be 'increment' or 'decrement'", verr.Message)

		_, err = svc.Adjust(ctx, services.AdjustRequest{VariantID: "gid://shopify/ProductVariant/abc", Quantity: 1, Action: services.ActionIncrement})
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("lookup failure", func(t *testing.T) {
		variants := new(MockVariantRepository)
		svc := services.NewInventoryService(variants, feeProductID)
		variants.On("Get", ctx, int64(11)).Return(nil, repositories.ErrNotFound).Once()

		_, err := svc.Adjust(ctx, services.AdjustRequest{VariantID: "11", Quantity: 1, Action: services.ActionIncrement})
		assert.ErrorIs(t, err, services.ErrVariantLookup)
	})

	t.Run("write failure", func(t *testing.T) {
		variants := new(MockVariantRepository)
		svc := services.NewInventoryService(variants, feeProductID)
		variants.On("Get", ctx, int64(11)).Return(stock(11, 1, 2), nil).Once()
		variants.On("SetAvailable", ctx, int64(110), 3).Return(errors.New("boom")).Once()

		_, err := svc.Adjust(ctx, services.AdjustRequest{VariantID: "11", Quantity: 1, Action: services.ActionIncrement})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, services.ErrVariantLookup)
	})
}

func TestInventoryService_CheckStock(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient stock", func(t *testing.T) {
		variants := new(MockVariantRepository)
		svc := services.NewInventoryService(variants, feeProductID)
		variants.On("Get", ctx, int64(11)).Return(stock(11, 1, 5), nil)
		variants.On("Get", ctx, int64(12)).Return(stock(12, 2, 1), nil)

		err := svc.CheckStock(ctx, []models.LineItem{{VariantID: 11, Quantity: 5}, {VariantID: 12, Quantity: 2}})
		var serr *services.StockError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "12", serr.VariantID)
		assert.Equal(t, 2, serr.Requested)
		assert.Equal(t, 1, serr.Available)
		assert.Contains(t, serr.Error(), "não tem stock suficiente")
	})

	t.Run("repeated variant within stock", func(t *testing.T) {
		variants := new(MockVariantRepository)
		svc := services.NewInventoryService(variants, feeProductID)
		variants.On("Get", ctx, int64(11)).Return(stock(11, 1, 4), nil).Once()

		assert.NoError(t, svc.CheckStock(ctx, []models.LineItem{{VariantID: 11, Quantity: 2}, {VariantID: 11, Quantity: 2}}))
		variants.AssertExpectations(t)
	})

	t.Run("fee product is not checked", func(t *testing.T) {
		variants := new(MockVariantRepository)
		svc := services.NewInventoryService(variants, feeProductID)
		variants.On("Get", ctx, int64(99)).Return(stock(99, feeProductID, 0), nil)

		assert.NoError(t, svc.CheckStock(ctx, []models.LineItem{{VariantID: 99, Quantity: 1}}))
	})

	t.Run("lookup failure", func(t *testing.T) {
		variants := new(MockVariantRepository)
		svc := services.NewInventoryService(variants, feeProductID)
		variants.On("Get", ctx, int64(11)).Return(nil, errors.New("timeout"))

		err := svc.CheckStock(ctx, []models.LineItem{{VariantID: 11, Quantity: 1}})
		var cerr *services.StockCheckError
		assert.ErrorAs(t, err, &cerr)
	})
}

func TestInventoryService_DecrementAll(t *testing.T) {
	ctx := context.Background()
	variants := new(MockVariantRepository)
	svc := services.NewInventoryService(variants, feeProductID)

	variants.On("Get", ctx, int64(11)).Return(stock(11, 1, 5), nil)
	variants.On("Get", ctx, int64(12)).Return(nil, errors.New("timeout"))
	variants.On("Get", ctx, int64(99)).Return(stock(99, feeProductID, 0), nil)
	variants.On("SetAvailable", ctx, int64(110), 3).Return(nil).Once()

	svc.DecrementAll(ctx, []models.LineItem{
		{VariantID: 11, Quantity: 2},
		{VariantID: 12, Quantity: 1},
		{VariantID: 99, Quantity: 1},
	})

	variants.AssertExpectations(t)
	variants.AssertNumberOfCalls(t, "SetAvailable", 1)
	variants.AssertNotCalled(t, "SetAvailable", ctx, int64(990), mock.Anything)
}
