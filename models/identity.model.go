package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role tells which identity store an account lives in.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleFarmer Role = "farmer"
)

// Identity is a buyer or farmer-seller account. Buyers live in the users
// collection, farmer-sellers in the farmers collection; both decode into
// this one struct and Role records which store the document came from.
type Identity struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber  string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	PasswordHash string             `bson:"password" json:"-"`
	Role         Role               `bson:"-" json:"role"`
	IsFarmer     bool               `bson:"isFarmer" json:"isFarmer"`

	// Buyer profile
	FirstName string `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string `bson:"lastName,omitempty" json:"lastName,omitempty"`

	// Farmer-seller profile
	BusinessName                string `bson:"businessName,omitempty" json:"businessName,omitempty"`
	BusinessCategories          string `bson:"businessCategories,omitempty" json:"businessCategories,omitempty"`
	BusinessState               string `bson:"businessState,omitempty" json:"businessState,omitempty"`
	BusinessLocalGovernmentArea string `bson:"businessLocalGovernmentArea,omitempty" json:"businessLocalGovernmentArea,omitempty"`
	BusinessAddress             string `bson:"businessAddress,omitempty" json:"businessAddress,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IdentityFields carries the caller supplied values for a new identity.
type IdentityFields struct {
	FirstName                   string
	LastName                    string
	Email                       string
	PhoneNumber                 string
	Password                    string
	BusinessName                string
	BusinessCategories          string
	BusinessState               string
	BusinessLocalGovernmentArea string
	BusinessAddress             string
}

// ProfilePatch is a partial profile update. Empty fields are left unchanged.
type ProfilePatch struct {
	FirstName                   string
	LastName                    string
	Email                       string
	PhoneNumber                 string
	Password                    string
	BusinessName                string
	BusinessCategories          string
	BusinessState               string
	BusinessLocalGovernmentArea string
	BusinessAddress             string
}
