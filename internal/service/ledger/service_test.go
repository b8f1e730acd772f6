package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/shopledger/internal/domain/models"
)

// fakeInventory is a mutex-guarded in-memory InventoryStore. DecrementStock
// is conditional like the real storage write: it fails without mutating
// unless enough stock is on hand at the moment of the call.
type fakeInventory struct {
	mu       sync.Mutex
	products map[string]*models.Product // by id hex

	// failDecrementFor forces a commit-phase conflict for one product,
	// simulating a concurrent purchase between validation and commit.
	failDecrementFor string
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{products: map[string]*models.Product{}}
}

func (f *fakeInventory) Seed(owner primitive.ObjectID, name string, price float64, qty int) *models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &models.Product{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Price:    price,
		Quantity: qty,
		OwnerID:  owner,
	}
	f.products[p.ID.Hex()] = p
	return p
}

func (f *fakeInventory) quantity(t *testing.T, id primitive.ObjectID) int {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id.Hex()]
	require.True(t, ok)
	return p.Quantity
}

func (f *fakeInventory) FindProductByName(_ context.Context, ownerID, name string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.OwnerID.Hex() == ownerID && p.Name == name {
			snapshot := *p
			return &snapshot, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeInventory) DecrementStock(_ context.Context, ownerID, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok || p.OwnerID.Hex() != ownerID {
		return models.ErrNotFound
	}
	if p.Name == f.failDecrementFor {
		return models.ErrInsufficientStock
	}
	if qty > p.Quantity {
		return models.ErrInsufficientStock
	}
	p.Quantity -= qty
	return nil
}

func (f *fakeInventory) IncrementStock(_ context.Context, ownerID, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok || p.OwnerID.Hex() != ownerID {
		return models.ErrNotFound
	}
	p.Quantity += qty
	return nil
}

// fakeBills is an in-memory BillStore.
type fakeBills struct {
	mu        sync.Mutex
	bills     map[string]*models.Bill
	insertErr error
}

func newFakeBills() *fakeBills {
	return &fakeBills{bills: map[string]*models.Bill{}}
}

func (f *fakeBills) InsertBill(_ context.Context, b *models.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	b.ID = primitive.NewObjectID()
	snapshot := *b
	f.bills[b.ID.Hex()] = &snapshot
	return nil
}

func (f *fakeBills) FindBillByID(_ context.Context, ownerID, id string) (*models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bills[id]
	if !ok || b.OwnerID.Hex() != ownerID {
		return nil, models.ErrNotFound
	}
	snapshot := *b
	return &snapshot, nil
}

func (f *fakeBills) ListBills(_ context.Context, ownerID string) ([]models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Bill{}
	for _, b := range f.bills {
		if b.OwnerID.Hex() == ownerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBills) UpdateBillPayment(_ context.Context, ownerID, id string, paid, pending float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bills[id]
	if !ok || b.OwnerID.Hex() != ownerID {
		return models.ErrNotFound
	}
	b.PaidAmount = paid
	b.PendingAmount = pending
	return nil
}

func (f *fakeBills) DeleteBill(_ context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bills[id]
	if !ok || b.OwnerID.Hex() != ownerID {
		return models.ErrNotFound
	}
	delete(f.bills, id)
	return nil
}

// fakeAlerter records low-stock notifications.
type fakeAlerter struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeAlerter) LowStock(_ context.Context, productName string, _, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, productName)
	return nil
}

func setup(t *testing.T) (*Service, *fakeInventory, *fakeBills, primitive.ObjectID) {
	t.Helper()
	inv := newFakeInventory()
	bills := newFakeBills()
	svc := NewService(inv, bills, nil, 0, nil)
	return svc, inv, bills, primitive.NewObjectID()
}

func billRequest(items []models.RequestedItem, total, paid float64) models.CreateBillRequest {
	return models.CreateBillRequest{
		CustomerName:      "Alice",
		PurchasedProducts: items,
		TotalAmount:       total,
		PaidAmount:        paid,
		PhoneNo:           "555",
	}
}

func TestCreateBill(t *testing.T) {
	svc, inv, bills, owner := setup(t)
	pen := inv.Seed(owner, "Pen", 10, 5)

	bill, err := svc.CreateBill(context.Background(), owner.Hex(),
		billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: 3}}, 30, 20))
	require.NoError(t, err)

	assert.Equal(t, 2, inv.quantity(t, pen.ID))
	assert.Equal(t, 30.0, bill.TotalAmount)
	assert.Equal(t, 20.0, bill.PaidAmount)
	assert.Equal(t, 10.0, bill.PendingAmount)
	require.Len(t, bill.LineItems, 1)
	assert.Equal(t, "Pen", bill.LineItems[0].ProductName)
	assert.Equal(t, 10.0, bill.LineItems[0].UnitPrice)
	assert.Equal(t, 3, bill.LineItems[0].Quantity)

	stored, err := bills.FindBillByID(context.Background(), owner.Hex(), bill.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, bill.PendingAmount, stored.TotalAmount-stored.PaidAmount)
}

func TestCreateBillMissingFields(t *testing.T) {
	svc, inv, _, owner := setup(t)
	inv.Seed(owner, "Pen", 10, 5)
	items := []models.RequestedItem{{ProductName: "Pen", Quantity: 1}}

	cases := []struct {
		name string
		req  models.CreateBillRequest
	}{
		{"no customer name", models.CreateBillRequest{PurchasedProducts: items, TotalAmount: 10, PhoneNo: "555"}},
		{"no line items", models.CreateBillRequest{CustomerName: "Alice", TotalAmount: 10, PhoneNo: "555"}},
		{"no total", models.CreateBillRequest{CustomerName: "Alice", PurchasedProducts: items, PhoneNo: "555"}},
		{"no phone", models.CreateBillRequest{CustomerName: "Alice", PurchasedProducts: items, TotalAmount: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBill(context.Background(), owner.Hex(), tc.req)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestCreateBillNonPositiveQuantity(t *testing.T) {
	svc, inv, _, owner := setup(t)
	pen := inv.Seed(owner, "Pen", 10, 5)

	_, err := svc.CreateBill(context.Background(), owner.Hex(),
		billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: -1}}, 10, 0))
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 5, inv.quantity(t, pen.ID))
}

func TestCreateBillProductNotFoundIsAtomic(t *testing.T) {
	svc, inv, bills, owner := setup(t)
	pen := inv.Seed(owner, "Pen", 10, 5)

	_, err := svc.CreateBill(context.Background(), owner.Hex(), billRequest([]models.RequestedItem{
		{ProductName: "Pen", Quantity: 2},
		{ProductName: "Ghost", Quantity: 1},
	}, 30, 0))
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "Ghost")

	// First line item validated fine, but nothing may have been committed.
	assert.Equal(t, 5, inv.quantity(t, pen.ID))
	stored, err := bills.ListBills(context.Background(), owner.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCreateBillInsufficientStock(t *testing.T) {
	svc, inv, _, owner := setup(t)
	pen := inv.Seed(owner, "Pen", 10, 2)

	_, err := svc.CreateBill(context.Background(), owner.Hex(),
		billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: 3}}, 30, 0))
	require.ErrorIs(t, err, models.ErrInsufficientStock)

	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Pen", stockErr.Product)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	assert.Equal(t, 2, inv.quantity(t, pen.ID))
}

func TestCreateBillAmountMismatch(t *testing.T) {
	svc, inv, _, owner := setup(t)
	pen := inv.Seed(owner, "Pen", 10, 5)

	_, err := svc.CreateBill(context.Background(), owner.Hex(),
		billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: 3}}, 31, 0))
	require.ErrorIs(t, err, models.ErrAmountMismatch)

	var mismatch *models.AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 31.0, mismatch.Claimed)
	assert.Equal(t, 30.0, mismatch.Computed)

	assert.Equal(t, 5, inv.quantity(t, pen.ID))
}

func TestCreateBillToleratesRounding(t *testing.T) {
	svc, inv, _, owner := setup(t)
	inv.Seed(owner, "Pen", 10, 5)

	// A claimed total within a cent of the computed 30.00 is accepted.
	_, err := svc.CreateBill(context.Background(), owner.Hex(),
		billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: 3}}, 30.009, 0))
	require.NoError(t, err)
}

func TestCreateBillRejectsOverpayment(t *testing.T) {
	svc, inv, _, owner := setup(t)
	pen := inv.Seed(owner, "Pen", 10, 5)

	_, err := svc.CreateBill(context.Background(), owner.Hex(),
		billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: 3}}, 30, 40))
	require.ErrorIs(t, err, models.ErrOverpayment)
	assert.Equal(t, 5, inv.quantity(t, pen.ID))
}

func TestCreateBillDuplicateLineItemsValidatedCumulatively(t *testing.T) {
	svc, inv, _, owner := setup(t)
	pen := inv.Seed(owner, "Pen", 10, 5)

	// 3 + 3 exceeds the 5 on hand even though each line alone fits.
	_, err := svc.CreateBill(context.Background(), owner.Hex(), billRequest([]models.RequestedItem{
		{ProductName: "Pen", Quantity: 3},
		{ProductName: "Pen", Quantity: 3},
	}, 60, 0))
	require.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Equal(t, 5, inv.quantity(t, pen.ID))

	// 2 + 3 fits exactly.
	bill, err := svc.CreateBill(context.Background(), owner.Hex(), billRequest([]models.RequestedItem{
		{ProductName: "Pen", Quantity: 2},
		{ProductName: "Pen", Quantity: 3},
	}, 50, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, inv.quantity(t, pen.ID))
	assert.Len(t, bill.LineItems, 2)
}

func TestCreateBillCommitConflictRollsBack(t *testing.T) {
	svc, inv, bills, owner := setup(t)
	pen := inv.Seed(owner, "Pen", 10, 5)
	book := inv.Seed(owner, "Book", 20, 5)
	inv.failDecrementFor = "Book"

	_, err := svc.CreateBill(context.Background(), owner.Hex(), billRequest([]models.RequestedItem{
		{ProductName: "Pen", Quantity: 2},
		{ProductName: "Book", Quantity: 1},
	}, 40, 0))
	require.ErrorIs(t, err, models.ErrInsufficientStock)

	assert.Equal(t, 5, inv.quantity(t, pen.ID))
	assert.Equal(t, 5, inv.quantity(t, book.ID))
	stored, err := bills.ListBills(context.Background(), owner.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCreateBillInsertFailureRollsBack(t *testing.T) {
	svc, inv, bills, owner := setup(t)
	pen := inv.Seed(owner, "Pen", 10, 5)
	bills.insertErr = errors.New("write concern error")

	_, err := svc.CreateBill(context.Background(), owner.Hex(),
		billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: 3}}, 30, 0))
	require.Error(t, err)
	assert.Equal(t, 5, inv.quantity(t, pen.ID))
}

func TestCreateBillConcurrentLastUnit(t *testing.T) {
	svc, inv, bills, owner := setup(t)
	pen := inv.Seed(owner, "Pen", 10, 1)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBill(context.Background(), owner.Hex(),
				billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: 1}}, 10, 10))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
		} else if errors.Is(err, models.ErrInsufficientStock) {
			conflicts++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 0, inv.quantity(t, pen.ID))
	stored, err := bills.ListBills(context.Background(), owner.Hex())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCreateBillLowStockAlert(t *testing.T) {
	inv := newFakeInventory()
	bills := newFakeBills()
	alerter := &fakeAlerter{}
	svc := NewService(inv, bills, alerter, 5, nil)
	owner := primitive.NewObjectID()
	inv.Seed(owner, "Pen", 10, 6)

	_, err := svc.CreateBill(context.Background(), owner.Hex(),
		billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: 3}}, 30, 0))
	require.NoError(t, err)

	assert.Equal(t, []string{"Pen"}, alerter.calls)
}

func TestCreateBillScopedToOwner(t *testing.T) {
	svc, inv, _, owner := setup(t)
	other := primitive.NewObjectID()
	inv.Seed(other, "Pen", 10, 5)

	_, err := svc.CreateBill(context.Background(), owner.Hex(),
		billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: 1}}, 10, 0))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func seedBill(t *testing.T, svc *Service, inv *fakeInventory, owner primitive.ObjectID) *models.Bill {
	t.Helper()
	inv.Seed(owner, "Pen", 10, 10)
	bill, err := svc.CreateBill(context.Background(), owner.Hex(),
		billRequest([]models.RequestedItem{{ProductName: "Pen", Quantity: 5}}, 50, 20))
	require.NoError(t, err)
	return bill
}

func TestRecordPayment(t *testing.T) {
	svc, inv, bills, owner := setup(t)
	bill := seedBill(t, svc, inv, owner)

	summary, err := svc.RecordPayment(context.Background(), owner.Hex(), bill.ID.Hex(), 35)
	require.NoError(t, err)
	assert.Equal(t, 35.0, summary.PaidAmount)
	assert.Equal(t, 15.0, summary.PendingAmount)
	assert.Equal(t, bill.CustomerName, summary.CustomerName)

	stored, err := bills.FindBillByID(context.Background(), owner.Hex(), bill.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, stored.TotalAmount-stored.PaidAmount, stored.PendingAmount)
}

func TestRecordPaymentIdempotent(t *testing.T) {
	svc, inv, bills, owner := setup(t)
	bill := seedBill(t, svc, inv, owner)

	first, err := svc.RecordPayment(context.Background(), owner.Hex(), bill.ID.Hex(), 35)
	require.NoError(t, err)
	second, err := svc.RecordPayment(context.Background(), owner.Hex(), bill.ID.Hex(), 35)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, err := bills.FindBillByID(context.Background(), owner.Hex(), bill.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 35.0, stored.PaidAmount)
	assert.Equal(t, 15.0, stored.PendingAmount)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	svc, inv, bills, owner := setup(t)
	bill := seedBill(t, svc, inv, owner)

	_, err := svc.RecordPayment(context.Background(), owner.Hex(), bill.ID.Hex(), 60)
	require.ErrorIs(t, err, models.ErrOverpayment)

	stored, err := bills.FindBillByID(context.Background(), owner.Hex(), bill.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 20.0, stored.PaidAmount)
	assert.Equal(t, 30.0, stored.PendingAmount)
}

func TestRecordPaymentUnknownBill(t *testing.T) {
	svc, _, _, owner := setup(t)
	_, err := svc.RecordPayment(context.Background(), owner.Hex(), primitive.NewObjectID().Hex(), 10)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordPaymentNegativeRejected(t *testing.T) {
	svc, inv, _, owner := setup(t)
	bill := seedBill(t, svc, inv, owner)

	_, err := svc.RecordPayment(context.Background(), owner.Hex(), bill.ID.Hex(), -1)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDeleteBill(t *testing.T) {
	svc, inv, bills, owner := setup(t)
	bill := seedBill(t, svc, inv, owner)

	require.NoError(t, svc.DeleteBill(context.Background(), owner.Hex(), bill.ID.Hex()))
	_, err := bills.FindBillByID(context.Background(), owner.Hex(), bill.ID.Hex())
	assert.ErrorIs(t, err, models.ErrNotFound)

	stored, err := svc.ListBills(context.Background(), owner.Hex())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDeleteBillScopedToOwner(t *testing.T) {
	svc, inv, _, owner := setup(t)
	bill := seedBill(t, svc, inv, owner)

	other := primitive.NewObjectID()
	err := svc.DeleteBill(context.Background(), other.Hex(), bill.ID.Hex())
	assert.ErrorIs(t, err, models.ErrNotFound)
}
