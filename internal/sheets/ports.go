// Package sheets defines the outbound port for mirroring expenses into a
// spreadsheet.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Actions recorded in the mirror's event column.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// ExpenseMirror appends one row per expense change.
type ExpenseMirror interface {
	AppendExpense(ctx context.Context, e core.Expense, action string) (rowRef string, err error)
}

// Header is the column layout every mirror writes, in order.
var Header = []string{"Date", "Category", "Payment Method", "Description", "Amount", "Expense ID", "User ID", "Event"}
