package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a produce listing posted by a farmer-seller
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Farmer      primitive.ObjectID `bson:"farmer" json:"farmer"`
	ProduceType string             `bson:"produceType" json:"produceType"`
	Category    string             `bson:"category" json:"category"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Location    string             `bson:"location" json:"location"`
	BidPrice    float64            `bson:"bidPrice" json:"bidPrice"`
	BidPeriod   time.Time          `bson:"bidPeriod" json:"bidPeriod"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
