package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/producthub/storefront/internal/catalog"
)

func TestGroupLines_MergesAndSorts(t *testing.T) {
	lines, err := groupLines([]Line{
		{"zzz", 1},
		{"aaa", 2},
		{"zzz", 4},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, Line{"aaa", 2}, lines[0])
	assert.Equal(t, Line{"zzz", 5}, lines[1])
}

func TestGroupLines_Failures(t *testing.T) {
	_, err := groupLines(nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = groupLines([]Line{{"p1", 0}})
	require.ErrorAs(t, err, &ve)
}

// Decimal math must stay exact: 0.10 * 3 is 0.30, not a float artifact.
func TestBuildOrder_ExactDecimalTotals(t *testing.T) {
	products := map[string]catalog.Product{
		"p1": {ID: "p1", Name: "Sticker", Price: decimal.RequireFromString("0.10"), Stock: 100, Active: true},
		"p2": {ID: "p2", Name: "Pin", Price: decimal.RequireFromString("19.99"), Stock: 100, Active: true},
	}
	lines := []Line{{"p1", 3}, {"p2", 2}}

	o, err := buildOrder(validInput(lines...), lines, products)
	require.NoError(t, err)
	assert.Equal(t, "40.28", o.Total.StringFixed(2))
	assert.Equal(t, StatusPendiente, o.Status)
	assert.NotEmpty(t, o.ID)
	for _, it := range o.Items {
		assert.Equal(t, o.ID, it.OrderID)
		assert.NotEmpty(t, it.ID)
	}
}

func TestDeductPlan_AllOrNothing(t *testing.T) {
	o := &Order{Items: []OrderItem{
		{ProductID: "p1", ProductName: "Laptop", Quantity: 2},
		{ProductID: "p2", ProductName: "Mouse", Quantity: 5},
	}}
	products := map[string]catalog.Product{
		"p1": {ID: "p1", Stock: 10},
		"p2": {ID: "p2", Stock: 4},
	}

	plan, err := deductPlan(o, products)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Nil(t, plan)
	require.Len(t, ve.Shortfalls, 1)
	assert.Equal(t, "p2", ve.Shortfalls[0].ProductID)

	products["p2"] = catalog.Product{ID: "p2", Stock: 5}
	plan, err = deductPlan(o, products)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, -2, plan[0].Delta)
	assert.Equal(t, -5, plan[1].Delta)
}

func TestRestockPlan(t *testing.T) {
	o := &Order{Items: []OrderItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 5},
	}}
	plan := restockPlan(o)
	require.Len(t, plan, 2)
	assert.Equal(t, stockAdjustment{ProductID: "p1", Delta: 2}, plan[0])
	assert.Equal(t, stockAdjustment{ProductID: "p2", Delta: 5}, plan[1])
}
