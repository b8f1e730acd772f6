package inventory

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopledger/internal/domain/models"
)

// Store is the product persistence contract for owner-scoped CRUD.
type Store interface {
	InsertProduct(ctx context.Context, p *models.Product) error
	FindProductByID(ctx context.Context, ownerID, id string) (*models.Product, error)
	ListProducts(ctx context.Context, ownerID string) ([]models.Product, error)
	UpdateProduct(ctx context.Context, ownerID, id string, update models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, ownerID, id string) error
}

// Service manages a shop owner's product inventory.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a new inventory service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// AddProduct creates a new product for the owner. Names are unique per owner.
func (s *Service) AddProduct(ctx context.Context, ownerID string, req models.CreateProductRequest) (*models.Product, error) {
	if req.ProductName == "" {
		return nil, fmt.Errorf("%w: productName is required", models.ErrValidation)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", models.ErrValidation)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", models.ErrValidation)
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed owner id", models.ErrValidation)
	}

	product := &models.Product{
		Name:     req.ProductName,
		Price:    req.Price,
		Quantity: req.Quantity,
		OwnerID:  owner,
	}
	if err := s.store.InsertProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product added",
		zap.String("product_id", product.ID.Hex()),
		zap.String("name", product.Name))

	return product, nil
}

// ListProducts returns every product belonging to the owner.
func (s *Service) ListProducts(ctx context.Context, ownerID string) ([]models.Product, error) {
	return s.store.ListProducts(ctx, ownerID)
}

// UpdateProduct applies a partial update to a product the owner holds.
func (s *Service) UpdateProduct(ctx context.Context, ownerID, productID string, req models.UpdateProductRequest) (*models.Product, error) {
	if req.ProductName != nil && *req.ProductName == "" {
		return nil, fmt.Errorf("%w: productName must not be empty", models.ErrValidation)
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", models.ErrValidation)
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", models.ErrValidation)
	}

	return s.store.UpdateProduct(ctx, ownerID, productID, req)
}

// DeleteProduct removes a product. Historical bills keep their snapshotted
// line items.
func (s *Service) DeleteProduct(ctx context.Context, ownerID, productID string) error {
	if err := s.store.DeleteProduct(ctx, ownerID, productID); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.String("product_id", productID))
	return nil
}
