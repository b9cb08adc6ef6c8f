// Package store holds the persistence backends: one identity backend per
// identity collection, the cart collection and the product collection.
// Every backend has a MongoDB implementation and an in-memory one.
package store

import (
	"context"
	"errors"

	"farm-market/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("store: document not found")

// ErrDuplicate is returned when a write collides with a unique index.
var ErrDuplicate = errors.New("store: duplicate key")

// Collection names
const (
	BuyersCollection   = "users"
	FarmersCollection  = "farmers"
	CartsCollection    = "carts"
	ProductsCollection = "products"
)

// IdentityBackend is one identity collection. Identities it returns carry
// the backend's Role.
type IdentityBackend interface {
	Role() models.Role
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Identity, error)
	// FindByEmail matches case-insensitively so records stored before
	// emails were lowercased are still found.
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByPhone(ctx context.Context, phone string) (*models.Identity, error)
	// ExistsByCredentials reports whether another identity in this
	// collection holds email OR phone. Empty values are ignored and a
	// non-zero exclude id is skipped.
	ExistsByCredentials(ctx context.Context, email, phone string, exclude primitive.ObjectID) (bool, error)
	Insert(ctx context.Context, identity *models.Identity) error
	Update(ctx context.Context, identity *models.Identity) error
}

// CartStore persists one cart document per buyer.
type CartStore interface {
	FindByBuyer(ctx context.Context, buyerID primitive.ObjectID) (*models.Cart, error)
	// Save writes the cart's items, creating the document on first save.
	Save(ctx context.Context, cart *models.Cart) error
}

// ProductStore is the product collection owned by the farmer listings.
type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	ListByFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]models.Product, error)
	Insert(ctx context.Context, product *models.Product) error
	// DeleteOwned removes the product only if farmerID owns it.
	DeleteOwned(ctx context.Context, id, farmerID primitive.ObjectID) error
}
