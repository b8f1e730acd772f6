package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopledger/internal/domain/models"
)

// amountTolerance absorbs decimal rounding from client-side total
// computation. Absolute, not relative: amounts are currency-scale.
const amountTolerance = 0.01

// InventoryStore is the product persistence contract the ledger needs.
// DecrementStock must be conditional: it fails without mutating anything
// unless at least qty units are on hand at the moment of the write.
type InventoryStore interface {
	FindProductByName(ctx context.Context, ownerID, name string) (*models.Product, error)
	DecrementStock(ctx context.Context, ownerID, productID string, qty int) error
	IncrementStock(ctx context.Context, ownerID, productID string, qty int) error
}

// BillStore is the bill persistence contract the ledger needs.
type BillStore interface {
	InsertBill(ctx context.Context, b *models.Bill) error
	FindBillByID(ctx context.Context, ownerID, id string) (*models.Bill, error)
	ListBills(ctx context.Context, ownerID string) ([]models.Bill, error)
	UpdateBillPayment(ctx context.Context, ownerID, id string, paid, pending float64) error
	DeleteBill(ctx context.Context, ownerID, id string) error
}

// Alerter receives best-effort notifications when a purchase leaves a
// product low on stock.
type Alerter interface {
	LowStock(ctx context.Context, productName string, remaining, threshold int) error
}

// Service is the ledger transaction engine: it validates purchases against
// live stock, applies the decrements, and records bills with
// partial-payment tracking.
type Service struct {
	inventory         InventoryStore
	bills             BillStore
	alerter           Alerter
	lowStockThreshold int
	logger            *zap.Logger
}

// NewService wires a new ledger service instance. alerter may be nil, in
// which case low-stock notifications are skipped.
func NewService(inventory InventoryStore, bills BillStore, alerter Alerter, lowStockThreshold int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inventory:         inventory,
		bills:             bills,
		alerter:           alerter,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// stagedDecrement accumulates the total quantity requested for one product
// across all line items of a request, so a request naming the same product
// twice is validated against the combined demand.
type stagedDecrement struct {
	product  *models.Product
	quantity int
}

// CreateBill validates the requested purchase, decrements stock for every
// line item and persists the bill.
//
// The operation is two-phase: first every line item is validated read-only,
// computing the authoritative total; only after all checks pass are the
// stock decrements applied, each as a conditional write. If a decrement or
// the bill insert fails, already-applied decrements are compensated, so no
// partial state survives a failure.
func (s *Service) CreateBill(ctx context.Context, ownerID string, req models.CreateBillRequest) (*models.Bill, error) {
	if req.CustomerName == "" || len(req.PurchasedProducts) == 0 || req.TotalAmount == 0 || req.PhoneNo == "" {
		return nil, fmt.Errorf("%w: all fields are required", models.ErrValidation)
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed owner id", models.ErrValidation)
	}
	if req.PaidAmount < 0 {
		return nil, fmt.Errorf("%w: paidAmount must not be negative", models.ErrValidation)
	}

	// Phase 1: validate all line items read-only and compute the total.
	var (
		totalProductCost float64
		lineItems        = make([]models.LineItem, 0, len(req.PurchasedProducts))
		staged           = make([]*stagedDecrement, 0, len(req.PurchasedProducts))
		stagedByName     = make(map[string]*stagedDecrement)
	)

	for _, item := range req.PurchasedProducts {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %q must be positive", models.ErrValidation, item.ProductName)
		}

		var product *models.Product
		if prior, ok := stagedByName[item.ProductName]; ok {
			product = prior.product
			prior.quantity += item.Quantity
			if prior.quantity > product.Quantity {
				return nil, &models.InsufficientStockError{
					Product:   product.Name,
					Requested: prior.quantity,
					Available: product.Quantity,
				}
			}
		} else {
			p, err := s.inventory.FindProductByName(ctx, ownerID, item.ProductName)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return nil, fmt.Errorf("product %q: %w", item.ProductName, models.ErrNotFound)
				}
				return nil, fmt.Errorf("look up product %q: %w", item.ProductName, err)
			}
			if item.Quantity > p.Quantity {
				return nil, &models.InsufficientStockError{
					Product:   p.Name,
					Requested: item.Quantity,
					Available: p.Quantity,
				}
			}
			product = p
			sd := &stagedDecrement{product: p, quantity: item.Quantity}
			staged = append(staged, sd)
			stagedByName[item.ProductName] = sd
		}

		totalProductCost += product.Price * float64(item.Quantity)
		lineItems = append(lineItems, models.LineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
		})
	}

	if math.Abs(totalProductCost-req.TotalAmount) > amountTolerance {
		return nil, &models.AmountMismatchError{Claimed: req.TotalAmount, Computed: totalProductCost}
	}
	if req.PaidAmount > req.TotalAmount {
		return nil, models.ErrOverpayment
	}

	// Phase 2: commit the decrements. A conditional-write miss here means a
	// concurrent purchase depleted the stock between validation and commit.
	applied := make([]*stagedDecrement, 0, len(staged))
	for _, sd := range staged {
		if err := s.inventory.DecrementStock(ctx, ownerID, sd.product.ID.Hex(), sd.quantity); err != nil {
			s.rollback(ctx, ownerID, applied)
			if errors.Is(err, models.ErrInsufficientStock) {
				return nil, &models.InsufficientStockError{
					Product:   sd.product.Name,
					Requested: sd.quantity,
					Available: sd.product.Quantity,
				}
			}
			return nil, fmt.Errorf("decrement stock for %q: %w", sd.product.Name, err)
		}
		applied = append(applied, sd)
	}

	bill := &models.Bill{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.PhoneNo,
		LineItems:     lineItems,
		TotalAmount:   req.TotalAmount,
		PaidAmount:    req.PaidAmount,
		PendingAmount: req.TotalAmount - req.PaidAmount,
		OwnerID:       owner,
	}

	if err := s.bills.InsertBill(ctx, bill); err != nil {
		s.rollback(ctx, ownerID, applied)
		return nil, fmt.Errorf("persist bill: %w", err)
	}

	s.logger.Info("bill created",
		zap.String("bill_id", bill.ID.Hex()),
		zap.String("customer", bill.CustomerName),
		zap.Float64("total", bill.TotalAmount),
		zap.Float64("pending", bill.PendingAmount))

	s.notifyLowStock(ctx, staged)

	return bill, nil
}

// rollback compensates already-applied decrements after a commit-phase
// failure. Failures here are logged, not returned: the original error is
// what the caller needs to see.
func (s *Service) rollback(ctx context.Context, ownerID string, applied []*stagedDecrement) {
	for _, sd := range applied {
		if err := s.inventory.IncrementStock(ctx, ownerID, sd.product.ID.Hex(), sd.quantity); err != nil {
			s.logger.Error("stock rollback failed",
				zap.String("product", sd.product.Name),
				zap.Int("quantity", sd.quantity),
				zap.Error(err))
		}
	}
}

func (s *Service) notifyLowStock(ctx context.Context, staged []*stagedDecrement) {
	if s.alerter == nil {
		return
	}
	for _, sd := range staged {
		remaining := sd.product.Quantity - sd.quantity
		if remaining >= s.lowStockThreshold {
			continue
		}
		if err := s.alerter.LowStock(ctx, sd.product.Name, remaining, s.lowStockThreshold); err != nil {
			s.logger.Warn("low stock alert failed",
				zap.String("product", sd.product.Name),
				zap.Error(err))
		}
	}
}

// RecordPayment sets the bill's cumulative paid amount and recomputes the
// pending amount. Calling it twice with the same value is idempotent;
// accumulating payments is the caller's responsibility.
func (s *Service) RecordPayment(ctx context.Context, ownerID, billID string, paidAmount float64) (*models.BillSummary, error) {
	if paidAmount < 0 {
		return nil, fmt.Errorf("%w: paidAmount must not be negative", models.ErrValidation)
	}

	bill, err := s.bills.FindBillByID(ctx, ownerID, billID)
	if err != nil {
		return nil, err
	}

	if paidAmount > bill.TotalAmount {
		return nil, models.ErrOverpayment
	}

	pending := bill.TotalAmount - paidAmount
	if err := s.bills.UpdateBillPayment(ctx, ownerID, billID, paidAmount, pending); err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("bill_id", billID),
		zap.Float64("paid", paidAmount),
		zap.Float64("pending", pending))

	return &models.BillSummary{
		ID:            bill.ID,
		CustomerName:  bill.CustomerName,
		TotalAmount:   bill.TotalAmount,
		PaidAmount:    paidAmount,
		PendingAmount: pending,
	}, nil
}

// ListBills returns every bill belonging to the owner.
func (s *Service) ListBills(ctx context.Context, ownerID string) ([]models.Bill, error) {
	return s.bills.ListBills(ctx, ownerID)
}

// DeleteBill removes a bill. Stock is not restored: a deleted bill is an
// erased record, not a refund.
func (s *Service) DeleteBill(ctx context.Context, ownerID, billID string) error {
	return s.bills.DeleteBill(ctx, ownerID, billID)
}
