package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"autochart/domain/dataset"
)

// ShoppingColumns is the column order of generated order datasets
var ShoppingColumns = []string{
	"order_id", "customer_id", "region", "category", "order_date",
	"quantity", "unit_price", "amount", "returned",
}

// ShoppingGeneratorConfig configures the order data generator
type ShoppingGeneratorConfig struct {
	CustomerCount        int       `json:"customer_count"`
	AvgOrdersPerCustomer float64   `json:"avg_orders_per_customer"`
	ReturnRateBase       float64   `json:"return_rate_base"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	Seed                 int64     `json:"seed"`
}

// DefaultShoppingConfig returns sensible defaults for order data generation
func DefaultShoppingConfig() ShoppingGeneratorConfig {
	return ShoppingGeneratorConfig{
		CustomerCount:        100,
		AvgOrdersPerCustomer: 2.5,
		ReturnRateBase:       0.08,
		StartDate:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:              time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Seed:                 42,
	}
}

type category struct {
	name     string
	weight   float64
	minPrice float64
	maxPrice float64
}

var (
	regions    = []string{"north", "south", "east", "west"}
	categories = []category{
		{"electronics", 0.15, 80, 900},
		{"clothing", 0.30, 10, 120},
		{"home", 0.20, 15, 300},
		{"books", 0.15, 5, 40},
		{"sports", 0.12, 20, 250},
		{"beauty", 0.08, 5, 80},
	}
)

// ShoppingDataGenerator produces seeded e-commerce order tables
type ShoppingDataGenerator struct {
	config ShoppingGeneratorConfig
	rng    *rand.Rand
}

// NewShoppingDataGenerator creates a generator; equal configs yield equal datasets
func NewShoppingDataGenerator(config ShoppingGeneratorConfig) *ShoppingDataGenerator {
	return &ShoppingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds one row per order, customers in order
func (g *ShoppingDataGenerator) Generate() dataset.Dataset {
	var rows []dataset.Record
	for i := 0; i < g.config.CustomerCount; i++ {
		rows = append(rows, g.customerOrders(fmt.Sprintf("customer_%04d", i+1))...)
	}
	return dataset.New(ShoppingColumns, rows)
}

func (g *ShoppingDataGenerator) customerOrders(customerID string) []dataset.Record {
	orderCount := int(math.Round(g.config.AvgOrdersPerCustomer + g.rng.NormFloat64()*0.5))
	// at least one order whenever orders are expected, at most ten
	if orderCount <= 0 && g.config.AvgOrdersPerCustomer > 0 {
		orderCount = 1
	}
	if orderCount > 10 {
		orderCount = 10
	}

	region := regions[g.rng.Intn(len(regions))]
	span := int(g.config.EndDate.Sub(g.config.StartDate).Hours() / 24)
	orders := make([]dataset.Record, 0, orderCount)
	for i := 0; i < orderCount; i++ {
		day := 0
		if span > 0 {
			day = g.rng.Intn(span + 1)
		}
		cat := g.pickCategory()
		quantity := 1 + g.rng.Intn(4)
		price := roundCents(cat.minPrice + g.rng.Float64()*(cat.maxPrice-cat.minPrice))

		// pricier items come back more often
		returnRate := g.config.ReturnRateBase * (1 + price/cat.maxPrice)
		orders = append(orders, dataset.Record{
			"order_id":    fmt.Sprintf("order_%s_%02d", customerID[len("customer_"):], i+1),
			"customer_id": customerID,
			"region":      region,
			"category":    cat.name,
			"order_date":  g.config.StartDate.AddDate(0, 0, day).Format("2006-01-02"),
			"quantity":    float64(quantity),
			"unit_price":  price,
			"amount":      roundCents(price * float64(quantity)),
			"returned":    g.rng.Float64() < returnRate,
		})
	}
	return orders
}

func (g *ShoppingDataGenerator) pickCategory() category {
	r := g.rng.Float64()
	for _, c := range categories {
		if r < c.weight {
			return c
		}
		r -= c.weight
	}
	return categories[len(categories)-1]
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
