package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDiv(t *testing.T) {
	ctx := DefaultContext()

	t.Run("keeps high precision", func(t *testing.T) {
		got := ctx.Div(d("1"), d("3"))
		want := d("0.3333333333333333333333333333")
		if !got.Equal(want) {
			t.Errorf("Div(1,3) = %s, want %s", got, want)
		}
	})

	t.Run("division by zero returns zero", func(t *testing.T) {
		if got := ctx.Div(d("5"), decimal.Zero); !got.IsZero() {
			t.Errorf("Div(5,0) = %s, want 0", got)
		}
	})

	t.Run("respects configured precision", func(t *testing.T) {
		ctx := Context{DivisionPrecision: 4, Rounding: RoundHalfUp}
		got := ctx.Div(d("2"), d("3"))
		if !got.Equal(d("0.6667")) {
			t.Errorf("Div(2,3) = %s, want 0.6667", got)
		}
	})
}

func TestQuantization(t *testing.T) {
	ctx := DefaultContext()

	tests := []struct {
		name string
		fn   func(decimal.Decimal) decimal.Decimal
		in   string
		want string
	}{
		{"cents rounds half up", ctx.Cents, "10.005", "10.01"},
		{"cents keeps sign", ctx.Cents, "-3.456", "-3.46"},
		{"unit keeps six places", ctx.Unit, "110.1000004", "110.1"},
		{"quantity keeps eight places", ctx.Quantity, "0.123456789", "0.12345679"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(d(tt.in)); !got.Equal(d(tt.want)) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("banker's rounding", func(t *testing.T) {
		ctx := Context{DivisionPrecision: 28, Rounding: RoundHalfEven}
		if got := ctx.Cents(d("10.005")); !got.Equal(d("10.00")) {
			t.Errorf("RoundHalfEven Cents(10.005) = %s, want 10.00", got)
		}
	})
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(d("10"), d("10.00000000000001")) {
		t.Error("expected difference below 1e-10 to be within tolerance")
	}
	if WithinTolerance(d("10"), d("10.001")) {
		t.Error("expected difference above 1e-10 to be outside tolerance")
	}
}
