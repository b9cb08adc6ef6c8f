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

// caseInsensitive compares strings ignoring case, matching the collation of
// the email index.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// MongoIdentities is an identity collection in MongoDB.
type MongoIdentities struct {
	Collection *mongo.Collection
	role       models.Role
}

// NewMongoIdentities wraps collection as the backend for role.
func NewMongoIdentities(collection *mongo.Collection, role models.Role) *MongoIdentities {
	return &MongoIdentities{Collection: collection, role: role}
}

// NewMongoBuyers returns the buyer backend of db.
func NewMongoBuyers(db *mongo.Database) *MongoIdentities {
	return NewMongoIdentities(db.Collection(BuyersCollection), models.RoleBuyer)
}

// NewMongoFarmers returns the farmer-seller backend of db.
func NewMongoFarmers(db *mongo.Database) *MongoIdentities {
	return NewMongoIdentities(db.Collection(FarmersCollection), models.RoleFarmer)
}

func (m *MongoIdentities) Role() models.Role { return m.role }

func (m *MongoIdentities) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Identity, error) {
	return m.findOne(ctx, bson.M{"_id": id}, options.FindOne())
}

func (m *MongoIdentities) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return m.findOne(ctx, bson.M{"email": email}, options.FindOne().SetCollation(caseInsensitive))
}

func (m *MongoIdentities) FindByPhone(ctx context.Context, phone string) (*models.Identity, error) {
	return m.findOne(ctx, bson.M{"phoneNumber": phone}, options.FindOne())
}

func (m *MongoIdentities) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.Identity, error) {
	var identity models.Identity
	err := m.Collection.FindOne(ctx, filter, opts).Decode(&identity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", m.role, err)
	}
	m.tag(&identity)
	return &identity, nil
}

func (m *MongoIdentities) ExistsByCredentials(ctx context.Context, email, phone string, exclude primitive.ObjectID) (bool, error) {
	conditions := bson.A{}
	if email != "" {
		conditions = append(conditions, bson.M{"email": email})
	}
	if phone != "" {
		conditions = append(conditions, bson.M{"phoneNumber": phone})
	}
	if len(conditions) == 0 {
		return false, nil
	}
	filter := bson.M{"$or": conditions}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	count, err := m.Collection.CountDocuments(ctx, filter, options.Count().SetLimit(1).SetCollation(caseInsensitive))
	if err != nil {
		return false, fmt.Errorf("count %s: %w", m.role, err)
	}
	return count > 0, nil
}

func (m *MongoIdentities) Insert(ctx context.Context, identity *models.Identity) error {
	if identity.ID.IsZero() {
		identity.ID = primitive.NewObjectID()
	}
	m.tag(identity)
	if _, err := m.Collection.InsertOne(ctx, identity); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", m.role, err)
	}
	return nil
}

func (m *MongoIdentities) Update(ctx context.Context, identity *models.Identity) error {
	m.tag(identity)
	result, err := m.Collection.UpdateOne(ctx, bson.M{"_id": identity.ID}, bson.M{"$set": identity})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update %s: %w", m.role, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoIdentities) tag(identity *models.Identity) {
	identity.Role = m.role
	identity.IsFarmer = m.role == models.RoleFarmer
}
