package cart

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart holds the selected lines in insertion order. It is not safe for
// concurrent use; Service serializes access to it.
type Cart struct {
	ID        string
	Lines     []Line
	UpdatedAt time.Time
}

func New() *Cart {
	return &Cart{
		ID:        uuid.NewString(),
		Lines:     []Line{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Add merges into the line with the same title or appends a new one.
func (c *Cart) Add(title string, price decimal.Decimal, image string) (AddResult, error) {
	if strings.TrimSpace(title) == "" {
		return AddResult{}, ErrEmptyTitle
	}
	if price.IsNegative() {
		return AddResult{}, &PriceParseError{Text: price.String(), Err: ErrNegativePrice}
	}

	defer c.touch()

	for i := range c.Lines {
		if c.Lines[i].Title == title {
			c.Lines[i].Quantity++
			return AddResult{Line: c.Lines[i], Index: i, Merged: true}, nil
		}
	}

	line := Line{
		Title:     title,
		UnitPrice: price,
		Image:     image,
		Quantity:  1,
	}
	c.Lines = append(c.Lines, line)
	return AddResult{Line: line, Index: len(c.Lines) - 1}, nil
}

// AddText parses a display price before adding. Nothing is added when the
// price is malformed.
func (c *Cart) AddText(title, priceText, image string) (AddResult, error) {
	if strings.TrimSpace(title) == "" {
		return AddResult{}, ErrEmptyTitle
	}
	price, err := ParsePrice(priceText)
	if err != nil {
		return AddResult{}, err
	}
	return c.Add(title, price, image)
}

// Remove deletes the whole line at index, whatever its quantity.
func (c *Cart) Remove(index int) (RemoveResult, error) {
	if index < 0 || index >= len(c.Lines) {
		return RemoveResult{}, &IndexOutOfRangeError{Index: index, Len: len(c.Lines)}
	}
	removed := c.Lines[index]
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	c.touch()
	return RemoveResult{Line: removed, Index: index}, nil
}

func (c *Cart) Len() int {
	return len(c.Lines)
}

func (c *Cart) TotalItemCount() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// TotalAmount is rounded to cents for display.
func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.touch()
}

// Replace swaps in previously stored lines, e.g. on hydration.
func (c *Cart) Replace(lines []Line) {
	c.Lines = append([]Line{}, lines...)
	c.touch()
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		CartID:    c.ID,
		Lines:     append([]Line{}, c.Lines...),
		ItemCount: c.TotalItemCount(),
		Total:     c.TotalAmount(),
		UpdatedAt: c.UpdatedAt,
	}
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
