package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a shop owner account. Every product and bill in the system is
// scoped to exactly one user.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	ShopName     string             `bson:"shopName" json:"shopName"`
	ShopAddress  string             `bson:"shopAddress" json:"shopAddress"`
	PhoneNo      string             `bson:"phoneNo" json:"phoneNo"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// SignupRequest is the payload for POST /auth/signup.
type SignupRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	ShopName    string `json:"shopName" binding:"required"`
	ShopAddress string `json:"shopAddress"`
	PhoneNo     string `json:"phoneNo"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
