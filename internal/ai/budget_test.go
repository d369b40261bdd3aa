package ai

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBudget_CheckAndRecord(t *testing.T) {
	b := NewBudget(decimal.RequireFromString("0.05"))

	if err := b.Check(); err != nil {
		t.Fatalf("Check() on fresh budget error = %v", err)
	}

	b.Record(decimal.RequireFromString("0.03"))
	if err := b.Check(); err != nil {
		t.Fatalf("Check() under limit error = %v", err)
	}
	if got := b.Spent(); !got.Equal(decimal.RequireFromString("0.03")) {
		t.Errorf("Spent() = %s, want 0.03", got)
	}

	b.Record(decimal.RequireFromString("0.02"))
	if err := b.Check(); !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("Check() at limit error = %v, want ErrBudgetExceeded", err)
	}
}

func TestBudget_ResetsDaily(t *testing.T) {
	now := time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC)
	b := NewBudget(decimal.RequireFromString("1"))
	b.now = func() time.Time { return now }

	b.Record(decimal.RequireFromString("1"))
	if err := b.Check(); !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("Check() error = %v, want ErrBudgetExceeded", err)
	}

	now = now.Add(2 * time.Hour)
	if err := b.Check(); err != nil {
		t.Errorf("Check() next day error = %v", err)
	}
	if !b.Spent().IsZero() {
		t.Errorf("Spent() next day = %s, want 0", b.Spent())
	}
}

func TestBudget_Unlimited(t *testing.T) {
	b := NewBudget(decimal.Zero)
	b.Record(decimal.NewFromInt(1000))
	if err := b.Check(); err != nil {
		t.Errorf("Check() with no limit error = %v", err)
	}
}

func TestParseBudget(t *testing.T) {
	if _, err := ParseBudget("abc"); err == nil {
		t.Error("ParseBudget(abc) error = nil, want error")
	}
	b, err := ParseBudget("2.50")
	if err != nil {
		t.Fatalf("ParseBudget() error = %v", err)
	}
	if got := b.String(); got != "2.50 USD/day" {
		t.Errorf("String() = %q, want 2.50 USD/day", got)
	}
}

func TestBudget_String(t *testing.T) {
	tests := []struct {
		limit string
		want  string
	}{
		{"1", "1.00 USD/day"},
		{"0.5", "0.50 USD/day"},
		{"0", "unlimited"},
		{"-1", "unlimited"},
	}
	for _, tt := range tests {
		if got := NewBudget(decimal.RequireFromString(tt.limit)).String(); got != tt.want {
			t.Errorf("NewBudget(%s).String() = %q, want %q", tt.limit, got, tt.want)
		}
	}
}
