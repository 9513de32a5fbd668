package cart

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Plain digits, or digits grouped in threes by commas, with an optional
// fraction.
var priceTextPattern = regexp.MustCompile(`^(\d+|\d{1,3}(,\d{3})+)(\.\d+)?$|^\.\d+$`)

// ParsePrice converts a display price such as "$1,250.00" into an amount.
// One leading currency symbol is allowed; commas must group thousands.
func ParsePrice(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if r, size := utf8.DecodeRuneInString(s); unicode.Is(unicode.Sc, r) {
		s = strings.TrimSpace(s[size:])
	}
	if s == "" {
		return decimal.Zero, &PriceParseError{Text: text, Err: ErrEmptyPrice}
	}

	digits, negative := strings.CutPrefix(s, "-")
	if !priceTextPattern.MatchString(digits) {
		return decimal.Zero, &PriceParseError{Text: text, Err: ErrMalformedPrice}
	}
	if negative {
		return decimal.Zero, &PriceParseError{Text: text, Err: ErrNegativePrice}
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(digits, ",", ""))
	if err != nil {
		return decimal.Zero, &PriceParseError{Text: text, Err: err}
	}
	return amount, nil
}

// FormatPrice renders an amount the way package cards show it, e.g. "$1,250.00".
func FormatPrice(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.Grow(len(s) + len(whole)/3 + 2)
	if amount.IsNegative() {
		b.WriteString("-")
	}
	b.WriteString("$")

	rem := len(whole) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(whole[:rem])
	for i := rem; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
