package controllers

import (
	"context"
	"net/http"
	"time"

	"farm-market/services"
	"farm-market/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CartController handles cart-related requests. Routes are mounted behind
// the buyer role gate, so the context identity is always a buyer.
type CartController struct {
	Carts  *services.CartService
	Logger *zap.Logger
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService, logger *zap.Logger) *CartController {
	return &CartController{Carts: carts, Logger: logger}
}

type cartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// AddToCart adds a product to the buyer's cart, merging with an existing line
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	buyer, err := currentIdentity(r)
	if err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}

	var item cartItemRequest
	if err := decodeBody(r, &item); err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cart, err := cc.Carts.AddItem(ctx, buyer.ID, item.ProductID, item.Quantity)
	if err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, cart)
}

// GetCart retrieves the buyer's cart with product details
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	buyer, err := currentIdentity(r)
	if err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cart, err := cc.Carts.GetCart(ctx, buyer.ID)
	if err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, cart)
}

// UpdateCartItem sets the quantity of a line already in the cart
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	buyer, err := currentIdentity(r)
	if err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}

	var item cartItemRequest
	if err := decodeBody(r, &item); err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cart, err := cc.Carts.UpdateItem(ctx, buyer.ID, item.ProductID, item.Quantity)
	if err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, cart)
}

// RemoveFromCart removes a product from the buyer's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	buyer, err := currentIdentity(r)
	if err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cart, err := cc.Carts.RemoveItem(ctx, buyer.ID, mux.Vars(r)["productId"])
	if err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, cart)
}

// ClearCart empties the buyer's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	buyer, err := currentIdentity(r)
	if err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cart, err := cc.Carts.ClearCart(ctx, buyer.ID)
	if err != nil {
		respondError(cc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, cart)
}
