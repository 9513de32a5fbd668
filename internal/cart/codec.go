package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// storedLine is the persisted shape: {"title","price","image","quantity"}.
type storedLine struct {
	Title    string      `json:"title"`
	Price    json.Number `json:"price"`
	Image    string      `json:"image"`
	Quantity int         `json:"quantity"`
}

// EncodeLines serializes lines as a flat JSON array with numeric prices.
func EncodeLines(lines []Line) ([]byte, error) {
	out := make([]storedLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, storedLine{
			Title:    l.Title,
			Price:    json.Number(l.UnitPrice.String()),
			Image:    l.Image,
			Quantity: l.Quantity,
		})
	}
	return json.Marshal(out)
}

// DecodeLines parses a stored cart. Values that break the line invariants
// are rejected as a whole so the caller can fall back to an empty cart.
func DecodeLines(data []byte) ([]Line, error) {
	var stored []storedLine
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	lines := make([]Line, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for i, s := range stored {
		if strings.TrimSpace(s.Title) == "" {
			return nil, fmt.Errorf("line %d: %w", i, ErrEmptyTitle)
		}
		if _, dup := seen[s.Title]; dup {
			return nil, fmt.Errorf("line %d: duplicate title %q", i, s.Title)
		}
		seen[s.Title] = struct{}{}

		if s.Quantity < 1 {
			return nil, fmt.Errorf("line %d: quantity %d must be positive", i, s.Quantity)
		}
		price, err := decimal.NewFromString(s.Price.String())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, &PriceParseError{Text: s.Price.String(), Err: err})
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("line %d: %w", i, &PriceParseError{Text: s.Price.String(), Err: ErrNegativePrice})
		}

		lines = append(lines, Line{
			Title:     s.Title,
			UnitPrice: price,
			Image:     s.Image,
			Quantity:  s.Quantity,
		})
	}
	return lines, nil
}
