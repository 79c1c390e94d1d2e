// Package pulse computes the dashboard "quick pulse": open high-severity
// alerts, pending tasks due today, and the current month's net cashflow.
package pulse

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"architecta/internal/models"
)

// Update writes a single metric into a summary.
type Update func(*models.PulseSummary)

type Aggregator struct {
	source Source
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Aggregator)

// WithClock sets the clock used to derive today's date and the current
// month. The returned time's location is the caller's local calendar.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

func New(source Source, logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		source: source,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Collect issues the three pulse reads for ownerID concurrently and calls
// apply once per read that succeeds. apply may be called from several
// goroutines at once. Failed reads are logged and dropped. Collect returns
// after every read has settled.
func (a *Aggregator) Collect(ctx context.Context, ownerID string, apply func(Update)) {
	today := a.now()
	todayStr := today.Format(models.DateLayout)
	month, year := int(today.Month()), today.Year()

	// Each read returns nil so one failure never cancels its siblings.
	var g errgroup.Group

	g.Go(func() error {
		alerts, err := a.source.Alerts(ctx, AlertFilter{
			OwnerID:   ownerID,
			Severity:  models.SeverityHigh,
			Dismissed: false,
		})
		if err != nil {
			a.report(ctx, &FetchError{Metric: MetricAlerts, OwnerID: ownerID, Err: err})
			return nil
		}
		n := countHighAlerts(alerts, ownerID)
		apply(func(s *models.PulseSummary) { s.AlertsHigh = n })
		return nil
	})

	g.Go(func() error {
		tasks, err := a.source.Tasks(ctx, TaskFilter{
			OwnerID: ownerID,
			Status:  models.TaskPending,
			DueDate: todayStr,
		})
		if err != nil {
			a.report(ctx, &FetchError{Metric: MetricTasks, OwnerID: ownerID, Err: err})
			return nil
		}
		n := countDueToday(tasks, ownerID, todayStr)
		apply(func(s *models.PulseSummary) { s.TasksDueToday = n })
		return nil
	})

	g.Go(func() error {
		entries, err := a.source.FinancialEntries(ctx, EntryFilter{
			OwnerID: ownerID,
			Month:   month,
			Year:    year,
		})
		if err != nil {
			a.report(ctx, &FetchError{Metric: MetricCashflow, OwnerID: ownerID, Err: err})
			return nil
		}
		net, doubleTagged := cashflowNet(entries, ownerID, month, year)
		for _, id := range doubleTagged {
			a.logger.Debug("financial entry counted as both income and expense",
				zap.String("owner_id", ownerID),
				zap.String("entry_id", id))
		}
		apply(func(s *models.PulseSummary) { s.CashflowNet = net })
		return nil
	})

	g.Wait() //nolint:errcheck // every read reports its own failure and returns nil
}

// Summarize runs one synchronous cycle starting from prev. Metrics whose
// read fails keep their prev value. An empty ownerID yields the zero
// summary without touching the data service.
func (a *Aggregator) Summarize(ctx context.Context, ownerID string, prev models.PulseSummary) models.PulseSummary {
	if ownerID == "" {
		return models.PulseSummary{}
	}

	summary := prev
	var mu sync.Mutex
	a.Collect(ctx, ownerID, func(u Update) {
		mu.Lock()
		u(&summary)
		mu.Unlock()
	})
	summary.IsLoading = false
	return summary
}

func (a *Aggregator) report(ctx context.Context, err *FetchError) {
	fields := []zap.Field{
		zap.String("metric", string(err.Metric)),
		zap.String("owner_id", err.OwnerID),
		zap.Error(err.Err),
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		a.logger.Debug("pulse read abandoned", fields...)
		return
	}
	a.logger.Warn("pulse read failed", fields...)
}

func countHighAlerts(alerts []models.Alert, ownerID string) int {
	n := 0
	for _, alert := range alerts {
		if alert.OwnerID == ownerID && !alert.IsDismissed && alert.Severity == models.SeverityHigh {
			n++
		}
	}
	return n
}

func countDueToday(tasks []models.Task, ownerID, today string) int {
	n := 0
	for _, task := range tasks {
		if task.OwnerID == ownerID && task.Status == models.TaskPending && task.DueDate == today {
			n++
		}
	}
	return n
}

// cashflowNet returns income minus expense for the month, plus the ids of
// entries tagged as both.
func cashflowNet(entries []models.FinancialEntry, ownerID string, month, year int) (decimal.Decimal, []string) {
	income := decimal.Zero
	expense := decimal.Zero
	var doubleTagged []string
	for i := range entries {
		e := &entries[i]
		if e.OwnerID != ownerID || e.Month != month || e.Year != year {
			continue
		}
		if e.IsIncome() {
			income = income.Add(e.Amount)
		}
		if e.IsExpense() {
			expense = expense.Add(e.Amount)
		}
		if e.IsIncome() && e.IsExpense() {
			doubleTagged = append(doubleTagged, e.ID)
		}
	}
	return income.Sub(expense), doubleTagged
}
