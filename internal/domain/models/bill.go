package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one product+quantity entry within a bill. Product name and
// unit price are snapshotted at purchase time so historical bills stay
// readable after a product is renamed, repriced or deleted; ProductID is
// kept as a weak reference only.
type LineItem struct {
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	ProductName string             `bson:"productName" json:"productName"`
	UnitPrice   float64            `bson:"unitPrice" json:"unitPrice"`
	Quantity    int                `bson:"quantity" json:"quantity"`
}

// Bill is a customer purchase record with partial-payment tracking.
// Invariant: PendingAmount == TotalAmount - PaidAmount after every write.
type Bill struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerName  string             `bson:"customerName" json:"customerName"`
	CustomerPhone string             `bson:"customerPhone" json:"customerPhone"`
	LineItems     []LineItem         `bson:"lineItems" json:"purchasedProducts"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	PaidAmount    float64            `bson:"paidAmount" json:"paidAmount"`
	PendingAmount float64            `bson:"pendingAmount" json:"pendingAmount"`
	OwnerID       primitive.ObjectID `bson:"ownerId" json:"-"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// RequestedItem is one line of a bill-creation request, referencing the
// product by its per-owner unique name.
type RequestedItem struct {
	ProductName string `json:"productName" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
}

// CreateBillRequest is the payload for POST /customers/add.
type CreateBillRequest struct {
	CustomerName      string          `json:"customerName" binding:"required"`
	PurchasedProducts []RequestedItem `json:"purchasedProducts" binding:"required"`
	TotalAmount       float64         `json:"totalAmount"`
	PaidAmount        float64         `json:"paidAmount"`
	PhoneNo           string          `json:"phoneNo" binding:"required"`
}

// UpdatePaymentRequest sets the new cumulative paid amount for a bill.
// It is a "set", not an "add": callers recording an extra payment read the
// current paid amount and submit the sum.
type UpdatePaymentRequest struct {
	PaidAmount *float64 `json:"paidAmount" binding:"required"`
}

// BillSummary is the trimmed view returned after a payment update.
type BillSummary struct {
	ID            primitive.ObjectID `json:"id"`
	CustomerName  string             `json:"customerName"`
	TotalAmount   float64            `json:"totalAmount"`
	PaidAmount    float64            `json:"paidAmount"`
	PendingAmount float64            `json:"pendingAmount"`
}
