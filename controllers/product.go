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

// ProductController handles produce listings
type ProductController struct {
	Products *services.ProductService
	Logger   *zap.Logger
}

// NewProductController creates a new ProductController
func NewProductController(products *services.ProductService, logger *zap.Logger) *ProductController {
	return &ProductController{Products: products, Logger: logger}
}

type productRequest struct {
	ProduceType string  `json:"produceType" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	Location    string  `json:"location" validate:"required"`
	BidPrice    float64 `json:"bidPrice" validate:"gt=0"`
	BidPeriod   string  `json:"bidPeriod" validate:"required"`
}

// CreateProduct posts a listing for the authenticated farmer (Farmer only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	farmer, err := currentIdentity(r)
	if err != nil {
		respondError(pc.Logger, w, r, err)
		return
	}

	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(pc.Logger, w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	product, err := pc.Products.Create(ctx, farmer.ID, services.ProductInput{
		ProduceType: req.ProduceType,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Location:    req.Location,
		BidPrice:    req.BidPrice,
		BidPeriod:   req.BidPeriod,
	})
	if err != nil {
		respondError(pc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, product)
}

// GetProducts retrieves all products
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	products, err := pc.Products.List(ctx)
	if err != nil {
		respondError(pc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	product, err := pc.Products.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondError(pc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, product)
}

// GetFarmerProducts lists the authenticated farmer's own listings (Farmer only)
func (pc *ProductController) GetFarmerProducts(w http.ResponseWriter, r *http.Request) {
	farmer, err := currentIdentity(r)
	if err != nil {
		respondError(pc.Logger, w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	products, err := pc.Products.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		respondError(pc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, products)
}

// DeleteProduct removes one of the authenticated farmer's listings (Farmer only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	farmer, err := currentIdentity(r)
	if err != nil {
		respondError(pc.Logger, w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := pc.Products.Delete(ctx, farmer.ID, mux.Vars(r)["id"]); err != nil {
		respondError(pc.Logger, w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Product removed"})
}
