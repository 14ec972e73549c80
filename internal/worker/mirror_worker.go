// Package worker consumes fintrack events off the broker and mirrors
// expense changes into a spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/sheets"
)

// Consumer delivers events to a handler until ctx ends.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// Stats counts what the worker has seen since start.
type Stats struct {
	Handled  int64
	Mirrored int64
	Failed   int64
	Alerts   int64
}

type MirrorWorker struct {
	mirror   sheets.ExpenseMirror
	metrics  *metrics.Metrics
	logger   *log.Logger
	interval time.Duration

	handled  atomic.Int64
	mirrored atomic.Int64
	failed   atomic.Int64
	alerts   atomic.Int64
}

// NewMirrorWorker builds a worker. A nil mirror turns expense events into
// log lines only.
func NewMirrorWorker(mirror sheets.ExpenseMirror, m *metrics.Metrics, logger *log.Logger, interval time.Duration) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &MirrorWorker{
		mirror:   mirror,
		metrics:  m,
		logger:   logger.WithComponent(log.ComponentWorker),
		interval: interval,
	}
}

// Handle processes one event. A returned error makes the consumer nack and
// requeue the delivery.
func (w *MirrorWorker) Handle(ctx context.Context, ev amqp.Event) error {
	w.handled.Add(1)

	switch ev.Type {
	case amqp.EventExpenseCreated:
		return w.mirrorExpense(ctx, ev, sheets.ActionCreated)
	case amqp.EventExpenseUpdated:
		return w.mirrorExpense(ctx, ev, sheets.ActionUpdated)
	case amqp.EventExpenseDeleted:
		w.logger.InfoContext(ctx, "Expense deleted",
			log.FieldUserID, ev.UserID,
			"expense_id", ev.Expense.ID)
		return nil
	case amqp.EventBudgetAlert:
		w.alerts.Add(1)
		a := ev.Alert
		w.logger.WarnContext(ctx, "Budget alert",
			log.FieldUserID, ev.UserID,
			log.FieldPeriod, a.Period,
			log.FieldCategory, a.Category,
			"level", a.Level,
			"percent_used", a.PercentUsed,
			"spent", a.Spent.String(),
			"limit", a.Limit.String())
		return nil
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event", log.FieldRoutingKey, ev.Type)
		return nil
	}
}

func (w *MirrorWorker) mirrorExpense(ctx context.Context, ev amqp.Event, action string) error {
	e := ev.Expense.ToExpense()
	if w.mirror == nil {
		w.logger.DebugContext(ctx, "Spreadsheet mirror disabled, skipping",
			"expense_id", e.ID,
			"action", action)
		return nil
	}

	ref, err := w.mirror.AppendExpense(ctx, e, action)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("mirror expense %s: %w", e.ID, err)
	}
	w.mirrored.Add(1)
	w.metrics.SheetsRowAppended()

	w.logger.InfoContext(ctx, "Mirrored expense",
		log.FieldOperation, log.OpAppend,
		log.FieldSheetsRef, ref,
		log.FieldUserID, e.UserID,
		log.FieldAmountCents, e.Amount.Cents,
		log.FieldCategory, e.Category,
		"expense_id", e.ID,
		"action", action)
	return nil
}

// Run consumes events and logs a heartbeat every interval until ctx is
// cancelled. Cancellation is a clean stop, not an error.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Consume(ctx, w.Handle)
	})

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				s := w.Stats()
				w.logger.InfoContext(ctx, "Worker heartbeat",
					"handled", s.Handled,
					"mirrored", s.Mirrored,
					"failed", s.Failed,
					"alerts", s.Alerts)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (w *MirrorWorker) Stats() Stats {
	return Stats{
		Handled:  w.handled.Load(),
		Mirrored: w.mirrored.Load(),
		Failed:   w.failed.Load(),
		Alerts:   w.alerts.Load(),
	}
}
