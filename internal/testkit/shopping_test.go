package testkit

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autochart/adapters/excel"
	"autochart/domain/profiling"
	profiler "autochart/internal/profiling"
)

func TestGenerateIsDeterministic(t *testing.T) {
	config := DefaultShoppingConfig()
	config.CustomerCount = 20

	a := NewShoppingDataGenerator(config).Generate()
	b := NewShoppingDataGenerator(config).Generate()
	assert.Equal(t, a, b)

	config.Seed = 7
	c := NewShoppingDataGenerator(config).Generate()
	assert.NotEqual(t, a.Rows, c.Rows)
}

func TestGenerateOrderShape(t *testing.T) {
	config := DefaultShoppingConfig()
	config.CustomerCount = 50
	ds := NewShoppingDataGenerator(config).Generate()

	require.GreaterOrEqual(t, ds.Len(), config.CustomerCount)
	assert.Equal(t, ShoppingColumns, ds.Columns)

	customerRegion := map[string]string{}
	for _, row := range ds.Rows {
		qty := row["quantity"].(float64)
		price := row["unit_price"].(float64)
		assert.InDelta(t, price*qty, row["amount"].(float64), 0.01)
		assert.GreaterOrEqual(t, qty, 1.0)
		assert.LessOrEqual(t, qty, 4.0)

		date := row["order_date"].(string)
		assert.GreaterOrEqual(t, date, "2024-01-01")
		assert.LessOrEqual(t, date, "2024-06-30")

		customer := row["customer_id"].(string)
		if region, ok := customerRegion[customer]; ok {
			assert.Equal(t, region, row["region"], "customers keep one region")
		}
		customerRegion[customer] = row["region"].(string)
	}
	assert.Len(t, customerRegion, config.CustomerCount)
}

func TestGeneratedCSVRoundTrip(t *testing.T) {
	config := DefaultShoppingConfig()
	config.CustomerCount = 30
	ds := NewShoppingDataGenerator(config).Generate()

	var buf bytes.Buffer
	require.NoError(t, excel.WriteCSV(&buf, ds))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(ShoppingColumns, ",")+"\n"))

	ingested, err := excel.NewDataReader(excel.DefaultReaderConfig()).Read(context.Background(), &buf, "orders.csv")
	require.NoError(t, err)
	assert.Equal(t, ds.Len(), ingested.Dataset.Len())

	profile := profiler.NewColumnProfiler(profiling.DefaultProfileOptions()).Profile(ingested.Dataset)
	types := map[string]profiling.ColumnType{}
	for _, cp := range profile.Ordered() {
		types[cp.Name] = cp.Type
	}
	assert.Equal(t, profiling.TypeInteger, types["quantity"])
	assert.Equal(t, profiling.TypeNumber, types["amount"])
	assert.Equal(t, profiling.TypeDate, types["order_date"])
	assert.Equal(t, profiling.TypeString, types["region"])
}
