package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders a monetary amount with its currency code.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + currency
}

// FormatTime formats a timestamp for table cells.
func FormatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
