package services

import (
	"context"
	"errors"

	"farm-market/metrics"
	"farm-market/models"
	"farm-market/store"
	"farm-market/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CartService owns one cart per buyer. Every method is scoped to the buyer
// id it is given; callers pass the authenticated identity's id.
//
// Mutations are read-modify-write without locking, so two concurrent
// requests for the same buyer resolve last write wins.
type CartService struct {
	carts    store.CartStore
	products store.ProductStore
	logger   *zap.Logger
}

func NewCartService(carts store.CartStore, products store.ProductStore, logger *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, logger: logger}
}

// AddItem merges quantity into the line for productRef, creating the cart
// and the line as needed.
func (s *CartService) AddItem(ctx context.Context, buyerID primitive.ObjectID, productRef string, quantity int) (cart *models.Cart, err error) {
	defer func() { metrics.RecordCartOperation("add", err) }()

	if quantity < 1 {
		return nil, utils.ValidationError("Quantity must be a positive integer")
	}
	productID, err := parseProductRef(productRef)
	if err != nil {
		return nil, err
	}

	cart, err = s.carts.FindByBuyer(ctx, buyerID)
	if errors.Is(err, store.ErrNotFound) {
		cart = &models.Cart{BuyerID: buyerID, Items: []models.CartItem{}}
	} else if err != nil {
		return nil, utils.InternalError("Error loading cart", err)
	}

	updated := false
	for i, existingItem := range cart.Items {
		if existingItem.ProductID == productID {
			cart.Items[i].Quantity += quantity
			updated = true
			break
		}
	}
	if !updated {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, utils.InternalError("Error updating cart", err)
	}
	return cart, nil
}

// GetCart returns the buyer's cart joined with the product records. A buyer
// without a cart gets an empty one. Lines whose product has been removed
// keep a nil Product.
func (s *CartService) GetCart(ctx context.Context, buyerID primitive.ObjectID) (view *models.CartView, err error) {
	defer func() { metrics.RecordCartOperation("get", err) }()

	cart, err := s.carts.FindByBuyer(ctx, buyerID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.CartView{BuyerID: buyerID, Items: []models.CartLineView{}}, nil
	}
	if err != nil {
		return nil, utils.InternalError("Error loading cart", err)
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, utils.InternalError("Error loading cart products", err)
	}
	byID := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view = &models.CartView{ID: cart.ID, BuyerID: cart.BuyerID, Items: make([]models.CartLineView, 0, len(cart.Items))}
	for _, item := range cart.Items {
		line := models.CartLineView{ProductID: item.ProductID, Quantity: item.Quantity}
		if p, ok := byID[item.ProductID]; ok {
			line.Product = &p
		}
		view.Items = append(view.Items, line)
	}
	return view, nil
}

// UpdateItem sets the quantity of an existing line.
func (s *CartService) UpdateItem(ctx context.Context, buyerID primitive.ObjectID, productRef string, quantity int) (cart *models.Cart, err error) {
	defer func() { metrics.RecordCartOperation("update", err) }()

	if quantity < 1 {
		return nil, utils.ValidationError("Quantity must be at least 1")
	}
	productID, err := parseProductRef(productRef)
	if err != nil {
		return nil, err
	}
	cart, err = s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	i := lineIndex(cart, productID)
	if i < 0 {
		return nil, utils.NotFoundError("Item not found in cart")
	}
	cart.Items[i].Quantity = quantity

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, utils.InternalError("Error updating cart", err)
	}
	return cart, nil
}

// RemoveItem drops the line for productRef.
func (s *CartService) RemoveItem(ctx context.Context, buyerID primitive.ObjectID, productRef string) (cart *models.Cart, err error) {
	defer func() { metrics.RecordCartOperation("remove", err) }()

	productID, err := parseProductRef(productRef)
	if err != nil {
		return nil, err
	}
	cart, err = s.load(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	i := lineIndex(cart, productID)
	if i < 0 {
		return nil, utils.NotFoundError("Item not found in cart")
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, utils.InternalError("Error updating cart", err)
	}
	return cart, nil
}

// ClearCart empties the cart but keeps the document. Clearing a cart that
// was never created succeeds without creating one.
func (s *CartService) ClearCart(ctx context.Context, buyerID primitive.ObjectID) (cart *models.Cart, err error) {
	defer func() { metrics.RecordCartOperation("clear", err) }()

	cart, err = s.carts.FindByBuyer(ctx, buyerID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.Cart{BuyerID: buyerID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, utils.InternalError("Error loading cart", err)
	}

	cart.Items = []models.CartItem{}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, utils.InternalError("Error clearing cart", err)
	}
	return cart, nil
}

func (s *CartService) load(ctx context.Context, buyerID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.FindByBuyer(ctx, buyerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFoundError("Cart not found")
	}
	if err != nil {
		return nil, utils.InternalError("Error loading cart", err)
	}
	return cart, nil
}

func lineIndex(cart *models.Cart, productID primitive.ObjectID) int {
	for i, item := range cart.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func parseProductRef(ref string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return primitive.NilObjectID, utils.ValidationError("Invalid product ID")
	}
	return id, nil
}
