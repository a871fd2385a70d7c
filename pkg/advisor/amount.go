package advisor

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Amount wraps decimal.Decimal for monetary values.
// JSON marshaling outputs a number while arithmetic stays exact.
type Amount struct {
	decimal.Decimal
}

// MarshalJSON outputs as a JSON number (not a string).
func (a Amount) MarshalJSON() ([]byte, error) {
	f, _ := a.Round(2).Float64()
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// NewAmount creates an Amount from a float64.
func NewAmount(f float64) Amount {
	return Amount{decimal.NewFromFloat(f)}
}

// NewAmountFromInt creates an Amount from an int64.
func NewAmountFromInt(i int64) Amount {
	return Amount{decimal.NewFromInt(i)}
}

// AmountPtr returns a pointer to v. Handy for building profiles in literals.
func AmountPtr(v Amount) *Amount {
	return &v
}

// Rupees renders the amount with an Indian rupee sign and thousands separators.
func (a Amount) Rupees() string {
	rounded := a.Round(2)
	if rounded.Equal(rounded.Truncate(0)) {
		return "₹" + humanize.Comma(rounded.IntPart())
	}
	f, _ := rounded.Float64()
	return "₹" + strings.TrimRight(humanize.CommafWithDigits(f, 2), ".")
}
