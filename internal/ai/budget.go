package ai

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Budget tracks AI spend per UTC day against a ceiling.
type Budget struct {
	limit decimal.Decimal
	spent decimal.Decimal
	day   string
	now   func() time.Time
	mu    sync.Mutex
}

// NewBudget creates a tracker. A zero or negative limit disables the ceiling.
func NewBudget(limit decimal.Decimal) *Budget {
	return &Budget{
		limit: limit,
		spent: decimal.Zero,
		now:   time.Now,
	}
}

// ParseBudget creates a tracker from a decimal string such as "1.50".
func ParseBudget(limit string) (*Budget, error) {
	d, err := decimal.NewFromString(limit)
	if err != nil {
		return nil, fmt.Errorf("invalid ai budget %q: %w", limit, err)
	}
	return NewBudget(d), nil
}

// String describes the configured daily ceiling.
func (b *Budget) String() string {
	if !b.limit.IsPositive() {
		return "unlimited"
	}
	return b.limit.StringFixed(2) + " USD/day"
}

// resetLocked starts a new day's tally when the date changes.
func (b *Budget) resetLocked() {
	today := b.now().UTC().Format(time.DateOnly)
	if today != b.day {
		b.day = today
		b.spent = decimal.Zero
	}
}

// Check returns ErrBudgetExceeded if today's spend has reached the limit.
func (b *Budget) Check() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked()
	if b.limit.IsPositive() && b.spent.GreaterThanOrEqual(b.limit) {
		return fmt.Errorf("%w: spent %s of %s", ErrBudgetExceeded, b.spent.StringFixed(4), b.limit.StringFixed(2))
	}
	return nil
}

// Record adds a call's cost to today's spend.
func (b *Budget) Record(cost decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked()
	b.spent = b.spent.Add(cost)
}

// Spent returns today's spend.
func (b *Budget) Spent() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked()
	return b.spent
}
