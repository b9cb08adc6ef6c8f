package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the uniqueness indexes backing the per-collection
// credential rules and the one-cart-per-buyer rule.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{BuyersCollection, FarmersCollection} {
		_, err := db.Collection(name).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetCollation(caseInsensitive).
					SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
			},
			{
				Keys: bson.D{{Key: "phoneNumber", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"phoneNumber": bson.M{"$type": "string"}}),
			},
		})
		if err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}

	_, err := db.Collection(CartsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "buyer_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create carts index: %w", err)
	}

	_, err = db.Collection(ProductsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "farmer", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create products index: %w", err)
	}
	return nil
}
