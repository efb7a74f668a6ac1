// Package dataset provides the synthetic Orders dataset loaded into both engines.
package dataset

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Regions is the fixed categorical domain of Order.Region.
var Regions = []string{"North", "South", "East", "West", "Central"}

// Distribution bounds of the generated data.
var (
	OrderDateFrom = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	OrderDateTo   = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
)

const (
	MinCustomerID = 1000
	MaxCustomerID = 9998 // Inclusive
	MinAmount     = 10.0
	MaxAmount     = 1000.0
)

// notes bloats the row size so the row-store has to read wide rows.
var notes = strings.TrimSpace(strings.Repeat("word ", 10))

// Columns lists the Orders columns in insert order.
var Columns = []string{"OrderID", "CustomerID", "OrderDate", "Amount", "Region", "Notes"}

// Order is one row of the Orders table.
type Order struct {
	OrderID    int32
	CustomerID int32
	OrderDate  time.Time
	Amount     decimal.Decimal // Scale 2
	Region     string
	Notes      string
}

// Values returns the row in Columns order.
func (o Order) Values() []any {
	return []any{o.OrderID, o.CustomerID, o.OrderDate, o.Amount, o.Region, o.Notes}
}

// Generator produces orders with sequential IDs 1..Total.
type Generator struct {
	rng   *rand.Rand
	total int64
	next  int64
}

// NewGenerator creates a generator for total rows. A zero seed is replaced by
// the current time.
func NewGenerator(total, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:   rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		total: total,
		next:  1,
	}
}

// Total returns the number of rows the generator produces.
func (g *Generator) Total() int64 {
	return g.total
}

// Remaining returns the number of rows not generated yet.
func (g *Generator) Remaining() int64 {
	return g.total - g.next + 1
}

// NextChunk returns up to size rows, or nil once every row was produced.
func (g *Generator) NextChunk(size int) []Order {
	n := int64(size)
	if rem := g.Remaining(); rem < n {
		n = rem
	}
	if n <= 0 {
		return nil
	}

	chunk := make([]Order, n)
	for i := range chunk {
		chunk[i] = g.order(g.next)
		g.next++
	}
	return chunk
}

func (g *Generator) order(id int64) Order {
	span := OrderDateTo.Unix() - OrderDateFrom.Unix()
	amount := MinAmount + g.rng.Float64()*(MaxAmount-MinAmount)

	return Order{
		OrderID:    int32(id),
		CustomerID: int32(MinCustomerID + g.rng.IntN(MaxCustomerID-MinCustomerID+1)),
		OrderDate:  time.Unix(OrderDateFrom.Unix()+g.rng.Int64N(span), 0).UTC(),
		Amount:     decimal.NewFromFloat(amount).Round(2),
		Region:     Regions[g.rng.IntN(len(Regions))],
		Notes:      notes,
	}
}
