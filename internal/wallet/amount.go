package wallet

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a decimal credit amount string ("20.00", "7,50") into
// cents. Comma decimal separators are accepted because grant CSVs and phone
// keyboards produce them.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(normalizeDecimal(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if d.Exponent() < -2 {
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", s)
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// FormatAmount renders cents as a decimal string with two places.
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func normalizeDecimal(s string) string {
	// A single comma is a decimal separator; anything else is left for the
	// decimal parser to reject.
	out := []rune(s)

	commas := 0
	for _, r := range out {
		if r == ',' {
			commas++
		}
	}

	if commas != 1 {
		return s
	}

	for i, r := range out {
		if r == ',' {
			out[i] = '.'
		}
	}

	return string(out)
}
