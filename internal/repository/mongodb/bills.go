package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/shopledger/internal/domain/models"
)

// InsertBill persists a new bill, assigning its id and creation time.
func (r *Repository) InsertBill(ctx context.Context, b *models.Bill) error {
	b.ID = primitive.NewObjectID()
	b.CreatedAt = time.Now().UTC()

	if _, err := r.db.Collection(billsColl).InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

// FindBillByID fetches one bill scoped to its owner.
func (r *Repository) FindBillByID(ctx context.Context, ownerID, id string) (*models.Bill, error) {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return nil, err
	}
	oid, err := objectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var b models.Bill
	err = r.db.Collection(billsColl).
		FindOne(ctx, bson.M{"_id": oid, "ownerId": owner}).
		Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find bill %s: %w", id, err)
	}
	return &b, nil
}

// ListBills returns every bill belonging to the owner, newest first.
func (r *Repository) ListBills(ctx context.Context, ownerID string) ([]models.Bill, error) {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.db.Collection(billsColl).Find(ctx, bson.M{"ownerId": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer cursor.Close(ctx)

	bills := []models.Bill{}
	if err := cursor.All(ctx, &bills); err != nil {
		return nil, fmt.Errorf("decode bills: %w", err)
	}
	return bills, nil
}

// ListBillsBetween returns all bills created within [start, end), across
// owners. Used by the daily report roll-up.
func (r *Repository) ListBillsBetween(ctx context.Context, start, end time.Time) ([]models.Bill, error) {
	cursor, err := r.db.Collection(billsColl).Find(ctx, bson.M{
		"createdAt": bson.M{"$gte": start, "$lt": end},
	})
	if err != nil {
		return nil, fmt.Errorf("list bills between: %w", err)
	}
	defer cursor.Close(ctx)

	bills := []models.Bill{}
	if err := cursor.All(ctx, &bills); err != nil {
		return nil, fmt.Errorf("decode bills: %w", err)
	}
	return bills, nil
}

// UpdateBillPayment sets the cumulative paid amount and the recomputed
// pending amount on a bill.
func (r *Repository) UpdateBillPayment(ctx context.Context, ownerID, id string, paid, pending float64) error {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return err
	}
	oid, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	res, err := r.db.Collection(billsColl).UpdateOne(ctx,
		bson.M{"_id": oid, "ownerId": owner},
		bson.M{"$set": bson.M{"paidAmount": paid, "pendingAmount": pending}},
	)
	if err != nil {
		return fmt.Errorf("update bill payment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteBill removes a bill scoped to its owner.
func (r *Repository) DeleteBill(ctx context.Context, ownerID, id string) error {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return err
	}
	oid, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	res, err := r.db.Collection(billsColl).DeleteOne(ctx, bson.M{"_id": oid, "ownerId": owner})
	if err != nil {
		return fmt.Errorf("delete bill %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
