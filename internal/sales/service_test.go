package sales

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-tombola/internal/ledger"
	"ms-tombola/internal/logger"
	"ms-tombola/internal/models"
)

// Mock implementations for testing

type MockSaleDB struct {
	rows         map[string]*models.Sale
	shouldFailOn string
	errorMsg     string
}

func NewMockSaleDB() *MockSaleDB {
	return &MockSaleDB{rows: make(map[string]*models.Sale)}
}

func (m *MockSaleDB) CreateSale(ctx context.Context, sale models.Sale) error {
	if m.shouldFailOn == "CreateSale" {
		return errors.New(m.errorMsg)
	}
	m.rows[sale.ID] = &sale
	return nil
}

func (m *MockSaleDB) GetSaleByID(ctx context.Context, id string) (*models.Sale, error) {
	if m.shouldFailOn == "GetSaleByID" {
		return nil, errors.New(m.errorMsg)
	}
	sale, exists := m.rows[id]
	if !exists {
		return nil, errors.New("sale not found")
	}
	return sale, nil
}

func (m *MockSaleDB) UpdateSale(ctx context.Context, sale models.Sale) error {
	if m.shouldFailOn == "UpdateSale" {
		return errors.New(m.errorMsg)
	}
	if _, exists := m.rows[sale.ID]; !exists {
		return errors.New("sale not found")
	}
	m.rows[sale.ID] = &sale
	return nil
}

func (m *MockSaleDB) DeleteSale(ctx context.Context, id string) error {
	if m.shouldFailOn == "DeleteSale" {
		return errors.New(m.errorMsg)
	}
	if _, exists := m.rows[id]; !exists {
		return errors.New("sale not found")
	}
	delete(m.rows, id)
	return nil
}

func (m *MockSaleDB) ListSales(ctx context.Context, w ledger.Window) ([]models.Sale, error) {
	if m.shouldFailOn == "ListSales" {
		return nil, errors.New(m.errorMsg)
	}
	out := make([]models.Sale, 0, len(m.rows))
	for _, sale := range m.rows {
		if w.Contains(sale.CreatedAt) {
			out = append(out, *sale)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (m *MockSaleDB) GetSalesBySeller(ctx context.Context, sellerID string) ([]models.Sale, error) {
	if m.shouldFailOn == "GetSalesBySeller" {
		return nil, errors.New(m.errorMsg)
	}
	out := make([]models.Sale, 0)
	for _, sale := range m.rows {
		if sale.SellerID == sellerID {
			out = append(out, *sale)
		}
	}
	// Newest first, matching the real storage layer.
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (m *MockSaleDB) SearchSales(ctx context.Context, opts ledger.SearchOptions) ([]models.Sale, int, error) {
	if m.shouldFailOn == "SearchSales" {
		return nil, 0, errors.New(m.errorMsg)
	}
	out, _ := m.ListSales(ctx, opts.Window)
	return out, len(out), nil
}

type MockNotifier struct {
	published []models.Sale
	fail      bool
}

func (m *MockNotifier) PublishSaleLogged(sale models.Sale) error {
	if m.fail {
		return errors.New("broker unreachable")
	}
	m.published = append(m.published, sale)
	return nil
}

func testService(db *MockSaleDB, notify Notifier) *Service {
	return NewService(db, notify, logger.NewLogger())
}

func seedSeller(t *testing.T, db *MockSaleDB, sellerID string, quantities []int) []models.Sale {
	t.Helper()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	out := make([]models.Sale, 0, len(quantities))
	for i, qty := range quantities {
		sale := models.Sale{
			ID:             sellerID + string(rune('a'+i)),
			SellerID:       sellerID,
			FirstName:      "Jean",
			LastName:       "Dupont",
			Contact:        "jean@example.com",
			Quantity:       qty,
			SellerEarning:  ledger.DefaultRates.SellerEarning(qty),
			CompanyEarning: ledger.DefaultRates.CompanyEarning(qty),
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.CreateSale(context.Background(), sale))
		out = append(out, sale)
	}
	return out
}

func TestRegisterSale(t *testing.T) {
	db := NewMockSaleDB()
	notifier := &MockNotifier{}
	svc := testService(db, notifier)

	sale, err := svc.RegisterSale(context.Background(), "seller-1", SaleInput{
		FirstName: "  Marie ",
		LastName:  "Curie",
		Contact:   "marie@example.com",
		Quantity:  4,
	}, ledger.DefaultRates)
	require.NoError(t, err)

	assert.Equal(t, "Marie", sale.FirstName, "first name is trimmed")
	assert.Equal(t, int64(1600), sale.SellerEarning)
	assert.Equal(t, int64(4400), sale.CompanyEarning)
	assert.Contains(t, db.rows, sale.ID)
	assert.Len(t, notifier.published, 1)
}

func TestRegisterSaleValidationBeforeStore(t *testing.T) {
	db := NewMockSaleDB()
	svc := testService(db, nil)

	cases := []SaleInput{
		{FirstName: "Jean", LastName: "", Contact: "x", Quantity: 1},
		{FirstName: "", LastName: "Dupont", Contact: "x", Quantity: 1},
		{FirstName: "Jean", LastName: "Dupont", Contact: "", Quantity: 1},
		{FirstName: "Jean", LastName: "Dupont", Contact: "x", Quantity: 0},
		{FirstName: "Jean", LastName: "Dupont", Contact: "x", Quantity: -3},
	}

	for _, in := range cases {
		_, err := svc.RegisterSale(context.Background(), "seller-1", in, ledger.DefaultRates)
		var ve *ledger.ValidationError
		assert.ErrorAs(t, err, &ve, "input %+v", in)
	}

	assert.Empty(t, db.rows, "rejected inputs must not reach the store")
}

func TestRegisterSaleSurvivesNotifierFailure(t *testing.T) {
	db := NewMockSaleDB()
	svc := testService(db, &MockNotifier{fail: true})

	sale, err := svc.RegisterSale(context.Background(), "seller-1", SaleInput{
		FirstName: "Jean", LastName: "Dupont", Contact: "x", Quantity: 2,
	}, ledger.DefaultRates)
	require.NoError(t, err, "sale must succeed despite notifier failure")
	assert.Contains(t, db.rows, sale.ID)
}

func TestEditSaleRecomputesEarnings(t *testing.T) {
	db := NewMockSaleDB()
	svc := testService(db, nil)
	seeded := seedSeller(t, db, "seller-1", []int{2})

	updated, err := svc.EditSale(context.Background(), seeded[0].ID, SaleInput{
		FirstName: "Jean", LastName: "Dupont", Contact: "x", Quantity: 7,
	}, ledger.DefaultRates)
	require.NoError(t, err)

	assert.Equal(t, 7, updated.Quantity)
	assert.Equal(t, int64(2800), updated.SellerEarning)
	assert.Equal(t, int64(7700), updated.CompanyEarning)
	assert.False(t, updated.UpdatedAt.IsZero())
}

func TestReduceTicketsDrainsNewestFirst(t *testing.T) {
	db := NewMockSaleDB()
	svc := testService(db, nil)

	// Created oldest to newest: 3, 5, 2 tickets.
	seeded := seedSeller(t, db, "seller-1", []int{3, 5, 2})

	correction, err := svc.ReduceTickets(context.Background(), "seller-1", 4, ledger.DefaultRates)
	require.NoError(t, err)

	assert.Equal(t, 4, correction.Removed)
	assert.Equal(t, 6, correction.NewTotal)

	// The newest sale (2 tickets) is deleted outright.
	assert.NotContains(t, db.rows, seeded[2].ID)

	// The middle sale absorbs the remainder: 5 -> 3, earnings recomputed.
	middle := db.rows[seeded[1].ID]
	require.NotNil(t, middle)
	assert.Equal(t, 3, middle.Quantity)
	assert.Equal(t, int64(1200), middle.SellerEarning)
	assert.Equal(t, int64(3300), middle.CompanyEarning)
	assert.False(t, middle.UpdatedAt.IsZero())

	// The oldest sale is untouched.
	oldest := db.rows[seeded[0].ID]
	require.NotNil(t, oldest)
	assert.Equal(t, 3, oldest.Quantity)
	assert.True(t, oldest.UpdatedAt.IsZero())
}

func TestReduceTicketsExactTotal(t *testing.T) {
	db := NewMockSaleDB()
	svc := testService(db, nil)
	seedSeller(t, db, "seller-1", []int{3, 5, 2})

	correction, err := svc.ReduceTickets(context.Background(), "seller-1", 10, ledger.DefaultRates)
	require.NoError(t, err)
	assert.Zero(t, correction.NewTotal)
	assert.Empty(t, db.rows, "an exact-total reduction wipes every row")
}

func TestReduceTicketsOutOfRange(t *testing.T) {
	db := NewMockSaleDB()
	svc := testService(db, nil)
	seedSeller(t, db, "seller-1", []int{3, 5, 2})

	_, err := svc.ReduceTickets(context.Background(), "seller-1", 11, ledger.DefaultRates)
	var oor *ledger.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 10, oor.Available)
	assert.Equal(t, 11, oor.Requested)

	// Nothing was mutated.
	assert.Len(t, db.rows, 3)
}

func TestReduceTicketsRejectsNonPositiveAmount(t *testing.T) {
	db := NewMockSaleDB()
	svc := testService(db, nil)
	seedSeller(t, db, "seller-1", []int{3})

	for _, amount := range []int{0, -2} {
		_, err := svc.ReduceTickets(context.Background(), "seller-1", amount, ledger.DefaultRates)
		var ve *ledger.ValidationError
		assert.ErrorAs(t, err, &ve, "amount %d", amount)
	}
	assert.Len(t, db.rows, 1)
}

func TestReduceTicketsStoreFailureNamesStep(t *testing.T) {
	db := NewMockSaleDB()
	svc := testService(db, nil)
	seedSeller(t, db, "seller-1", []int{3, 5, 2})

	db.shouldFailOn = "DeleteSale"
	db.errorMsg = "connection lost"

	_, err := svc.ReduceTickets(context.Background(), "seller-1", 4, ledger.DefaultRates)
	var se *ledger.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "delete drained sale", se.Step)
}

func TestSellerSalesWindow(t *testing.T) {
	db := NewMockSaleDB()
	svc := testService(db, nil)
	seeded := seedSeller(t, db, "seller-1", []int{1, 2, 3})

	w := ledger.Window{Start: seeded[1].CreatedAt}
	rows, err := svc.SellerSales(context.Background(), "seller-1", w)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt), "newest first")
}
