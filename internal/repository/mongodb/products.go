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

// objectIDFromHex parses a caller-supplied id. Invalid ids behave like
// references to documents that do not exist.
func objectIDFromHex(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.ErrNotFound
	}
	return oid, nil
}

// InsertProduct persists a new product, assigning its id and creation time.
func (r *Repository) InsertProduct(ctx context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()

	if _, err := r.db.Collection(productsColl).InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrProductExists
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// FindProductByName fetches one product by its per-owner unique name.
func (r *Repository) FindProductByName(ctx context.Context, ownerID, name string) (*models.Product, error) {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return nil, err
	}

	var p models.Product
	err = r.db.Collection(productsColl).
		FindOne(ctx, bson.M{"ownerId": owner, "productName": name}).
		Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find product %q: %w", name, err)
	}
	return &p, nil
}

// FindProductByID fetches one product scoped to its owner.
func (r *Repository) FindProductByID(ctx context.Context, ownerID, id string) (*models.Product, error) {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return nil, err
	}
	oid, err := objectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var p models.Product
	err = r.db.Collection(productsColl).
		FindOne(ctx, bson.M{"_id": oid, "ownerId": owner}).
		Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}
	return &p, nil
}

// ListProducts returns every product belonging to the owner.
func (r *Repository) ListProducts(ctx context.Context, ownerID string) ([]models.Product, error) {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Collection(productsColl).Find(ctx, bson.M{"ownerId": owner})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies a partial update and returns the updated document.
func (r *Repository) UpdateProduct(ctx context.Context, ownerID, id string, update models.UpdateProductRequest) (*models.Product, error) {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return nil, err
	}
	oid, err := objectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if update.ProductName != nil {
		set["productName"] = *update.ProductName
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Quantity != nil {
		set["quantity"] = *update.Quantity
	}
	if len(set) == 0 {
		return r.FindProductByID(ctx, ownerID, id)
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err = r.db.Collection(productsColl).
		FindOneAndUpdate(ctx, bson.M{"_id": oid, "ownerId": owner}, bson.M{"$set": set}, after).
		Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrProductExists
		}
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return &p, nil
}

// DeleteProduct removes a product scoped to its owner. Historical bills keep
// their snapshotted line items and are not touched.
func (r *Repository) DeleteProduct(ctx context.Context, ownerID, id string) error {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return err
	}
	oid, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	res, err := r.db.Collection(productsColl).DeleteOne(ctx, bson.M{"_id": oid, "ownerId": owner})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DecrementStock atomically subtracts qty from the product's quantity, but
// only if at least qty units are on hand. The conditional filter is what
// keeps two concurrent purchases of the last unit from both succeeding.
func (r *Repository) DecrementStock(ctx context.Context, ownerID, id string, qty int) error {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return err
	}
	oid, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	res, err := r.db.Collection(productsColl).UpdateOne(ctx,
		bson.M{"_id": oid, "ownerId": owner, "quantity": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"quantity": -qty}},
	)
	if err != nil {
		return fmt.Errorf("decrement stock for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrInsufficientStock
	}
	return nil
}

// IncrementStock adds qty back to the product's quantity. Used as the
// compensating write when a bill commit fails partway.
func (r *Repository) IncrementStock(ctx context.Context, ownerID, id string, qty int) error {
	owner, err := objectIDFromHex(ownerID)
	if err != nil {
		return err
	}
	oid, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	res, err := r.db.Collection(productsColl).UpdateOne(ctx,
		bson.M{"_id": oid, "ownerId": owner},
		bson.M{"$inc": bson.M{"quantity": qty}},
	)
	if err != nil {
		return fmt.Errorf("increment stock for %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
