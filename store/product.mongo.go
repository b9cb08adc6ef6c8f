package store

import (
	"context"
	"errors"
	"fmt"

	"farm-market/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProducts is the products collection.
type MongoProducts struct {
	Collection *mongo.Collection
}

// NewMongoProducts returns the product store of db.
func NewMongoProducts(db *mongo.Database) *MongoProducts {
	return &MongoProducts{Collection: db.Collection(ProductsCollection)}
}

func (m *MongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := m.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

func (m *MongoProducts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	return m.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (m *MongoProducts) List(ctx context.Context) ([]models.Product, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoProducts) ListByFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]models.Product, error) {
	return m.find(ctx, bson.M{"farmer": farmerID})
}

func (m *MongoProducts) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cursor, err := m.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return products, nil
}

func (m *MongoProducts) Insert(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if _, err := m.Collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (m *MongoProducts) DeleteOwned(ctx context.Context, id, farmerID primitive.ObjectID) error {
	result, err := m.Collection.DeleteOne(ctx, bson.M{"_id": id, "farmer": farmerID})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
