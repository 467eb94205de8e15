package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erazemk/katalog/internal/model"
)

// ParsePrice reads a currency-formatted price such as "$1,099.99".
// Currency symbols, grouping commas and spaces are ignored.
func ParsePrice(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// StockValue sums price times units in stock. Items whose price cannot be
// read are skipped and counted.
func StockValue(items []model.Item) (total decimal.Decimal, skipped int) {
	for _, item := range items {
		price, ok := ParsePrice(item.Price)
		if !ok {
			skipped++
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.NumInStock))))
	}
	return total, skipped
}
