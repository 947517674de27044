package ordersend

import (
	"fmt"
	"math/rand"
	"time"
)

type Side uint8

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Code returns the FIX tag 54 value.
func (s Side) Code() byte {
	return '0' + byte(s)
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return fmt.Sprintf("side_unknown(%d)", uint8(s))
	}
}

// Order is a single New Order Single before encoding. It lives for one
// iteration of the send loop.
type Order struct {
	ID       uint64
	Side     Side
	Price    int
	Quantity int
}

// Range is a closed interval [Min, Max].
type Range struct {
	Min int
	Max int
}

func (r Range) Valid() bool {
	return r.Min >= 1 && r.Min <= r.Max
}

func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Min, r.Max)
}

// Generator draws random orders. It is not safe for concurrent use.
type Generator struct {
	rng        *rand.Rand
	prices     Range
	quantities Range
}

// NewGenerator returns a Generator seeded with seed, or with the clock if seed
// is 0. The same seed and ranges always produce the same order stream.
func NewGenerator(seed int64, prices, quantities Range) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:        rand.New(rand.NewSource(seed)),
		prices:     prices,
		quantities: quantities,
	}
}

func (g *Generator) Next(id uint64) Order {
	side := SideSell
	if g.rng.Float64() > 0.5 {
		side = SideBuy
	}
	return Order{
		ID:       id,
		Side:     side,
		Price:    g.draw(g.prices),
		Quantity: g.draw(g.quantities),
	}
}

func (g *Generator) draw(r Range) int {
	return r.Min + g.rng.Intn(r.Max-r.Min+1)
}
