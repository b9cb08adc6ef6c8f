package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farm-market/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCarts is the carts collection.
type MongoCarts struct {
	Collection *mongo.Collection
}

// NewMongoCarts returns the cart store of db.
func NewMongoCarts(db *mongo.Database) *MongoCarts {
	return &MongoCarts{Collection: db.Collection(CartsCollection)}
}

func (m *MongoCarts) FindByBuyer(ctx context.Context, buyerID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := m.Collection.FindOne(ctx, bson.M{"buyer_id": buyerID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (m *MongoCarts) Save(ctx context.Context, cart *models.Cart) error {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	cart.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{"items": cart.Items, "updatedAt": cart.UpdatedAt}}
	result, err := m.Collection.UpdateOne(ctx, bson.M{"buyer_id": cart.BuyerID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
		cart.ID = id
	}
	return nil
}
