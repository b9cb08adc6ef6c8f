package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem represents an item in the cart
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart represents a buyer's shopping cart
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BuyerID   primitive.ObjectID `bson:"buyer_id" json:"buyer_id"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CartLineView is a cart line with its product record joined in.
// Product is nil when the referenced product no longer exists.
type CartLineView struct {
	ProductID primitive.ObjectID `json:"product_id"`
	Quantity  int                `json:"quantity"`
	Product   *Product           `json:"product"`
}

// CartView is the read model returned by GET /cart.
type CartView struct {
	ID      primitive.ObjectID `json:"id,omitempty"`
	BuyerID primitive.ObjectID `json:"buyer_id"`
	Items   []CartLineView     `json:"items"`
}
