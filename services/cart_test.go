package services

import (
	"context"
	"errors"
	"testing"

	"farm-market/models"
	"farm-market/store"
	"farm-market/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newCartService() (*CartService, *store.MemoryCarts, *store.MemoryProducts) {
	carts := store.NewMemoryCarts()
	products := store.NewMemoryProducts()
	return NewCartService(carts, products, zap.NewNop()), carts, products
}

func TestAddItemMergesQuantities(t *testing.T) {
	svc, _, _ := newCartService()
	ctx := context.Background()
	buyer := primitive.NewObjectID()
	product := primitive.NewObjectID().Hex()

	_, err := svc.AddItem(ctx, buyer, product, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, buyer, product, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.False(t, cart.ID.IsZero())

	cart, err = svc.UpdateItem(ctx, buyer, product, 7)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)
}

func TestAddItemAppendsDistinctProducts(t *testing.T) {
	svc, _, _ := newCartService()
	ctx := context.Background()
	buyer := primitive.NewObjectID()

	_, err := svc.AddItem(ctx, buyer, primitive.NewObjectID().Hex(), 1)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, buyer, primitive.NewObjectID().Hex(), 4)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestAddItemValidatesInput(t *testing.T) {
	svc, carts, _ := newCartService()
	ctx := context.Background()
	buyer := primitive.NewObjectID()

	for _, qty := range []int{0, -1} {
		_, err := svc.AddItem(ctx, buyer, primitive.NewObjectID().Hex(), qty)
		assert.True(t, errors.Is(err, utils.ErrValidation), "quantity %d", qty)
	}
	_, err := svc.AddItem(ctx, buyer, "not-an-id", 1)
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = carts.FindByBuyer(ctx, buyer)
	assert.ErrorIs(t, err, store.ErrNotFound, "rejected adds create no cart")
}

func TestUpdateItemRequiresExistingLine(t *testing.T) {
	svc, _, _ := newCartService()
	ctx := context.Background()
	buyer := primitive.NewObjectID()
	product := primitive.NewObjectID().Hex()

	_, err := svc.UpdateItem(ctx, buyer, product, 1)
	assert.True(t, errors.Is(err, utils.ErrNotFound), "no cart yet")

	_, err = svc.AddItem(ctx, buyer, product, 1)
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, buyer, primitive.NewObjectID().Hex(), 2)
	assert.True(t, errors.Is(err, utils.ErrNotFound), "no such line")

	_, err = svc.UpdateItem(ctx, buyer, product, 0)
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestRemoveItem(t *testing.T) {
	svc, _, _ := newCartService()
	ctx := context.Background()
	buyer := primitive.NewObjectID()
	keep := primitive.NewObjectID().Hex()
	drop := primitive.NewObjectID().Hex()

	_, err := svc.RemoveItem(ctx, buyer, drop)
	assert.True(t, errors.Is(err, utils.ErrNotFound), "no cart yet")

	_, err = svc.AddItem(ctx, buyer, keep, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, buyer, drop, 2)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, buyer, drop)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, keep, cart.Items[0].ProductID.Hex())

	_, err = svc.RemoveItem(ctx, buyer, drop)
	assert.True(t, errors.Is(err, utils.ErrNotFound), "line already removed")
}

func TestClearCart(t *testing.T) {
	svc, carts, _ := newCartService()
	ctx := context.Background()
	buyer := primitive.NewObjectID()

	cart, err := svc.ClearCart(ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	_, err = carts.FindByBuyer(ctx, buyer)
	assert.ErrorIs(t, err, store.ErrNotFound, "clearing a missing cart creates nothing")

	added, err := svc.AddItem(ctx, buyer, primitive.NewObjectID().Hex(), 3)
	require.NoError(t, err)

	cart, err = svc.ClearCart(ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	stored, err := carts.FindByBuyer(ctx, buyer)
	require.NoError(t, err, "cart document survives clearing")
	assert.Equal(t, added.ID, stored.ID)
	assert.Empty(t, stored.Items)
}

func TestCartsAreIndependentPerBuyer(t *testing.T) {
	svc, _, _ := newCartService()
	ctx := context.Background()
	buyerA := primitive.NewObjectID()
	buyerB := primitive.NewObjectID()
	p1 := primitive.NewObjectID().Hex()

	_, err := svc.AddItem(ctx, buyerA, p1, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, buyerB, p1, 5)
	require.NoError(t, err)

	_, err = svc.ClearCart(ctx, buyerA)
	require.NoError(t, err)

	a, err := svc.GetCart(ctx, buyerA)
	require.NoError(t, err)
	b, err := svc.GetCart(ctx, buyerB)
	require.NoError(t, err)

	assert.Empty(t, a.Items)
	require.Len(t, b.Items, 1)
	assert.Equal(t, 5, b.Items[0].Quantity)
}

func TestGetCartJoinsProducts(t *testing.T) {
	svc, _, products := newCartService()
	ctx := context.Background()
	buyer := primitive.NewObjectID()

	empty, err := svc.GetCart(ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, buyer, empty.BuyerID)

	tomato := &models.Product{ProduceType: "Tomato", Category: "Vegetables", BidPrice: 1200}
	require.NoError(t, products.Insert(ctx, tomato))
	gone := primitive.NewObjectID()

	_, err = svc.AddItem(ctx, buyer, tomato.ID.Hex(), 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, buyer, gone.Hex(), 1)
	require.NoError(t, err)

	view, err := svc.GetCart(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	require.NotNil(t, view.Items[0].Product)
	assert.Equal(t, "Tomato", view.Items[0].Product.ProduceType)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, gone, view.Items[1].ProductID)
	assert.Nil(t, view.Items[1].Product)
}
