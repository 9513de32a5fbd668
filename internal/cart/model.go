package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is one selected package. Title is the natural key.
type Line struct {
	Title     string
	UnitPrice decimal.Decimal
	Image     string
	Quantity  int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is a read-only copy of the cart handed to presentation adapters.
type Snapshot struct {
	CartID    string
	Lines     []Line
	ItemCount int
	Total     decimal.Decimal
	UpdatedAt time.Time
}

func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}

type AddResult struct {
	Line   Line
	Index  int
	Merged bool
}

type RemoveResult struct {
	Line  Line
	Index int
}
