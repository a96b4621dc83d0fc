package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

func DereferencePtr[T any](ptr *T, defaultValue T) T {
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

func Ptr[T any](v T) *T { return &v }

// DecimalFromSheet parses a numeric cell. Sheet-edited cells may be empty
// or carry stray whitespace; both decode as zero rather than an error.
func DecimalFromSheet(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
