package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a stock item owned by exactly one shop account. The
// (OwnerID, Name) pair is unique; Quantity never goes negative.
type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"productName" json:"productName"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CreateProductRequest is the payload for POST /products.
type CreateProductRequest struct {
	ProductName string  `json:"productName" binding:"required"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// UpdateProductRequest carries a partial product update; nil fields are
// left untouched.
type UpdateProductRequest struct {
	ProductName *string  `json:"productName"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
}
