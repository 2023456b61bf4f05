package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davemwangi/stocktrack/models"
)

func TestBuildReportTotals(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "alice")
	createProduct(t, db, user.ID, "Widget", 5, 10.00)
	createProduct(t, db, user.ID, "Gadget", 3, 4.50)

	report, err := BuildReport(db, user.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalProducts)
	assert.Equal(t, 8, report.TotalQuantity)
	assert.Equal(t, 5*10.00+3*4.50, report.TotalValue)

	// The aggregated rows ride along with the report.
	require.Len(t, report.Products, 2)
	assert.Equal(t, "Widget", report.Products[0].Name)
	assert.Equal(t, "Gadget", report.Products[1].Name)
}

func TestBuildReportCategoryRollups(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "alice")
	for _, p := range []*models.Product{
		{Name: "Hammer", Category: "tools", Quantity: 4, Price: 12.00, UserID: user.ID},
		{Name: "Saw", Category: "tools", Quantity: 2, Price: 20.00, UserID: user.ID},
		{Name: "Tape", Category: "supplies", Quantity: 10, Price: 1.25, UserID: user.ID},
	} {
		require.NoError(t, db.Create(p).Error)
	}

	report, err := BuildReport(db, user.ID)
	require.NoError(t, err)

	require.Len(t, report.Categories, 2)
	// Categories are sorted by name.
	supplies, tools := report.Categories[0], report.Categories[1]

	assert.Equal(t, "supplies", supplies.Category)
	assert.Equal(t, 1, supplies.Count)
	assert.Equal(t, 10, supplies.Quantity)
	assert.Equal(t, 12.50, supplies.Value)

	assert.Equal(t, "tools", tools.Category)
	assert.Equal(t, 2, tools.Count)
	assert.Equal(t, 6, tools.Quantity)
	assert.Equal(t, 4*12.00+2*20.00, tools.Value)
}

func TestBuildReportScopedToUser(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	createProduct(t, db, alice.ID, "Widget", 5, 10.00)
	createProduct(t, db, bob.ID, "Gadget", 100, 99.00)

	report, err := BuildReport(db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalProducts)
	assert.Equal(t, 50.00, report.TotalValue)
	require.Len(t, report.Products, 1)
	assert.Equal(t, "Widget", report.Products[0].Name)
}

func TestBuildReportRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "alice")

	report, err := BuildReport(db, user.ID)
	require.NoError(t, err)
	assert.Zero(t, report.TotalProducts)
	assert.Zero(t, report.TotalValue)

	product := createProduct(t, db, user.ID, "Widget", 5, 10.00)
	report, err = BuildReport(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalProducts)
	assert.Equal(t, 50.00, report.TotalValue)

	require.NoError(t, db.Delete(product).Error)
	report, err = BuildReport(db, user.ID)
	require.NoError(t, err)
	assert.Zero(t, report.TotalProducts)
	assert.Zero(t, report.TotalValue)
}

func TestBuildReportReflectsOrderActivity(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "alice")
	product := createProduct(t, db, user.ID, "Widget", 5, 10.00)

	order, _, err := CreateOrder(db, user.ID, CustomerInfo{Name: "Jane Doe"}, []OrderLine{
		{ProductID: product.ID, Quantity: 3},
	})
	require.NoError(t, err)

	report, err := BuildReport(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalQuantity)
	assert.Equal(t, 20.00, report.TotalValue)

	_, err = CancelOrder(db, user.ID, order.ID)
	require.NoError(t, err)

	report, err = BuildReport(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, report.TotalQuantity)
	assert.Equal(t, 50.00, report.TotalValue)
}
