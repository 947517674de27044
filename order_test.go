package ordersend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	defaultPrices     = Range{Min: DefaultPriceMin, Max: DefaultPriceMax}
	defaultQuantities = Range{Min: DefaultQuantityMin, Max: DefaultQuantityMax}
)

func TestGeneratorFieldDomain(t *testing.T) {
	assert := assert.New(t)

	gen := NewGenerator(42, defaultPrices, defaultQuantities)

	var (
		buys       int
		seenPrices = make(map[int]bool)
		seenQty    = make(map[int]bool)
	)
	const n = 20000
	for id := uint64(0); id < n; id++ {
		o := gen.Next(id)
		assert.Equal(id, o.ID)
		assert.True(o.Side.Valid())
		assert.True(defaultPrices.Contains(o.Price), "price %d", o.Price)
		assert.True(defaultQuantities.Contains(o.Quantity), "quantity %d", o.Quantity)

		if o.Side == SideBuy {
			buys++
		}
		seenPrices[o.Price] = true
		seenQty[o.Quantity] = true
	}

	// both ends of the closed ranges are reachable
	assert.Len(seenPrices, 21)
	assert.Len(seenQty, 100)

	assert.InDelta(n/2, buys, n/20)
}

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(42, defaultPrices, defaultQuantities)
	b := NewGenerator(42, defaultPrices, defaultQuantities)
	c := NewGenerator(43, defaultPrices, defaultQuantities)

	same := true
	for id := uint64(0); id < 100; id++ {
		oa, ob, oc := a.Next(id), b.Next(id), c.Next(id)
		assert.Equal(t, oa, ob)
		if oa != oc {
			same = false
		}
	}
	assert.False(t, same, "different seeds should produce different orders")
}

func TestGeneratorSingletonRange(t *testing.T) {
	gen := NewGenerator(1, Range{Min: 5, Max: 5}, Range{Min: 7, Max: 7})
	for id := uint64(0); id < 100; id++ {
		o := gen.Next(id)
		assert.Equal(t, 5, o.Price)
		assert.Equal(t, 7, o.Quantity)
	}
}

func TestSide(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(byte('1'), SideBuy.Code())
	assert.Equal(byte('2'), SideSell.Code())
	assert.Equal("buy", SideBuy.String())
	assert.Equal("sell", SideSell.String())
	assert.False(Side(0).Valid())
	assert.Equal("side_unknown(9)", Side(9).String())
}

func TestRange(t *testing.T) {
	assert := assert.New(t)

	assert.True(Range{Min: 1, Max: 1}.Valid())
	assert.False(Range{Min: 0, Max: 1}.Valid())
	assert.False(Range{Min: 3, Max: 2}.Valid())
	assert.True(Range{Min: 90, Max: 110}.Contains(90))
	assert.True(Range{Min: 90, Max: 110}.Contains(110))
	assert.False(Range{Min: 90, Max: 110}.Contains(111))
	assert.Equal("[90,110]", Range{Min: 90, Max: 110}.String())
}
