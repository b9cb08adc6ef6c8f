package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"farm-market/models"
	"farm-market/store"
	"farm-market/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductInput is a new listing as posted by a farmer-seller. BidPeriod is
// a relative duration such as "7 days" or "2 weeks".
type ProductInput struct {
	ProduceType string
	Category    string
	Quantity    int
	Location    string
	BidPrice    float64
	BidPeriod   string
}

// ProductService is the pass-through listing store used by farmer-sellers
// and read by the cart join.
type ProductService struct {
	products store.ProductStore
	now      func() time.Time
}

func NewProductService(products store.ProductStore) *ProductService {
	return &ProductService{products: products, now: func() time.Time { return time.Now().UTC() }}
}

// Create posts a listing owned by farmerID.
func (s *ProductService) Create(ctx context.Context, farmerID primitive.ObjectID, in ProductInput) (*models.Product, error) {
	now := s.now()
	bidEnd, err := bidEndDate(now, in.BidPeriod)
	if err != nil {
		return nil, err
	}
	product := &models.Product{
		Farmer:      farmerID,
		ProduceType: in.ProduceType,
		Category:    in.Category,
		Quantity:    in.Quantity,
		Location:    in.Location,
		BidPrice:    in.BidPrice,
		BidPeriod:   bidEnd,
		CreatedAt:   now,
	}
	if err := s.products.Insert(ctx, product); err != nil {
		return nil, utils.InternalError("Error creating product", err)
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, utils.InternalError("Error fetching products", err)
	}
	return products, nil
}

func (s *ProductService) ListByFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]models.Product, error) {
	products, err := s.products.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, utils.InternalError("Error fetching products", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseProductRef(id)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, oid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFoundError("Product not found")
	}
	if err != nil {
		return nil, utils.InternalError("Error fetching product", err)
	}
	return product, nil
}

// Delete removes a listing. Listings of other farmers are reported as not found.
func (s *ProductService) Delete(ctx context.Context, farmerID primitive.ObjectID, id string) error {
	oid, err := parseProductRef(id)
	if err != nil {
		return err
	}
	err = s.products.DeleteOwned(ctx, oid, farmerID)
	if errors.Is(err, store.ErrNotFound) {
		return utils.NotFoundError("Product not found")
	}
	if err != nil {
		return utils.InternalError("Error deleting product", err)
	}
	return nil
}

// bidEndDate turns "<n> days" or "<n> weeks" into an absolute end date.
func bidEndDate(from time.Time, period string) (time.Time, error) {
	fields := strings.Fields(strings.ToLower(period))
	if len(fields) != 2 {
		return time.Time{}, utils.ValidationError("bidPeriod must look like \"7 days\"")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 {
		return time.Time{}, utils.ValidationError("bidPeriod must start with a positive number")
	}
	switch strings.TrimSuffix(fields[1], "s") {
	case "day":
		return from.AddDate(0, 0, n), nil
	case "week":
		return from.AddDate(0, 0, 7*n), nil
	default:
		return time.Time{}, utils.ValidationError("bidPeriod unit must be days or weeks")
	}
}
