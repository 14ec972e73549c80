// Package memory is an in-process ExpenseMirror that keeps rows in a slice.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// Row is one mirrored expense change.
type Row struct {
	Ref     string
	Action  string
	Expense core.Expense
}

type Mirror struct {
	mu   sync.Mutex
	rows []Row
	err  error
}

var _ sheets.ExpenseMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// FailWith makes every following append return err until reset with nil.
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// AppendExpense stores the row and returns a synthetic row reference.
func (m *Mirror) AppendExpense(_ context.Context, e core.Expense, action string) (string, error) {
	if e.ID == "" {
		return "", errors.New("expense has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	ref := fmt.Sprintf("mem:%d", len(m.rows)+1)
	m.rows = append(m.rows, Row{Ref: ref, Action: action, Expense: e})
	return ref, nil
}

// Rows returns a copy of everything appended so far.
func (m *Mirror) Rows() []Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Row(nil), m.rows...)
}
