package pulse

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"architecta/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	today    = "2026-03-14"
	tomorrow = "2026-03-15"

	errBoom = errors.New("connection reset")

	summaryCmp = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
)

// fakeSource returns its records unfiltered so the aggregator's own
// predicates are exercised.
type fakeSource struct {
	mu sync.Mutex

	alerts  []models.Alert
	tasks   []models.Task
	entries []models.FinancialEntry

	alertsErr  error
	tasksErr   error
	entriesErr error

	// gates blocks every read for an owner until the channel is closed.
	gates map[string]chan struct{}

	calls        int
	alertFilters []AlertFilter
	taskFilters  []TaskFilter
	entryFilters []EntryFilter
}

func (f *fakeSource) wait(ctx context.Context, owner string) error {
	f.mu.Lock()
	gate := f.gates[owner]
	f.calls++
	f.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) Alerts(ctx context.Context, filter AlertFilter) ([]models.Alert, error) {
	if err := f.wait(ctx, filter.OwnerID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alertFilters = append(f.alertFilters, filter)
	return f.alerts, f.alertsErr
}

func (f *fakeSource) Tasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	if err := f.wait(ctx, filter.OwnerID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taskFilters = append(f.taskFilters, filter)
	return f.tasks, f.tasksErr
}

func (f *fakeSource) FinancialEntries(ctx context.Context, filter EntryFilter) ([]models.FinancialEntry, error) {
	if err := f.wait(ctx, filter.OwnerID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entryFilters = append(f.entryFilters, filter)
	return f.entries, f.entriesErr
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestAggregator(src Source) *Aggregator {
	return New(src, zap.NewNop(), WithClock(func() time.Time { return fixedNow }))
}

func entry(id, owner string, amount int64, source, category string) models.FinancialEntry {
	e := models.FinancialEntry{
		ID:      id,
		OwnerID: owner,
		Amount:  decimal.NewFromInt(amount),
		Month:   3,
		Year:    2026,
	}
	if source != "" {
		e.SourceID = sql.NullString{String: source, Valid: true}
	}
	if category != "" {
		e.CategoryID = sql.NullString{String: category, Valid: true}
	}
	return e
}

func TestSummarizeNoHighAlerts(t *testing.T) {
	src := &fakeSource{alerts: []models.Alert{
		{ID: "a1", OwnerID: "u1", Severity: models.SeverityLow},
		{ID: "a2", OwnerID: "u1", Severity: models.SeverityMedium},
	}}

	got := newTestAggregator(src).Summarize(context.Background(), "u1", models.PulseSummary{})
	if got.AlertsHigh != 0 {
		t.Fatalf("AlertsHigh = %d, want 0", got.AlertsHigh)
	}
}

func TestSummarizeCountsOpenHighAlerts(t *testing.T) {
	src := &fakeSource{alerts: []models.Alert{
		{ID: "a1", OwnerID: "u1", Severity: models.SeverityHigh, IsDismissed: false},
		{ID: "a2", OwnerID: "u1", Severity: models.SeverityHigh, IsDismissed: true},
		{ID: "a3", OwnerID: "u1", Severity: models.SeverityLow, IsDismissed: false},
		{ID: "a4", OwnerID: "u2", Severity: models.SeverityHigh, IsDismissed: false},
	}}

	got := newTestAggregator(src).Summarize(context.Background(), "u1", models.PulseSummary{})
	if got.AlertsHigh != 1 {
		t.Fatalf("AlertsHigh = %d, want 1", got.AlertsHigh)
	}
}

func TestSummarizeCountsTasksDueToday(t *testing.T) {
	src := &fakeSource{tasks: []models.Task{
		{ID: "t1", OwnerID: "u1", Status: models.TaskPending, DueDate: today},
		{ID: "t2", OwnerID: "u1", Status: models.TaskPending, DueDate: tomorrow},
		{ID: "t3", OwnerID: "u1", Status: models.TaskDone, DueDate: today},
	}}

	got := newTestAggregator(src).Summarize(context.Background(), "u1", models.PulseSummary{})
	if got.TasksDueToday != 1 {
		t.Fatalf("TasksDueToday = %d, want 1", got.TasksDueToday)
	}
}

func TestSummarizeCashflowNet(t *testing.T) {
	cases := []struct {
		name    string
		entries []models.FinancialEntry
		want    string
	}{
		{
			name: "income minus expense",
			entries: []models.FinancialEntry{
				entry("e1", "u1", 100, "s1", ""),
				entry("e2", "u1", 40, "", "c1"),
			},
			want: "60",
		},
		{
			name: "negative net",
			entries: []models.FinancialEntry{
				entry("e1", "u1", 25, "s1", ""),
				entry("e2", "u1", 90, "", "c1"),
			},
			want: "-65",
		},
		{
			name: "untagged entry ignored",
			entries: []models.FinancialEntry{
				entry("e1", "u1", 100, "", ""),
			},
			want: "0",
		},
		{
			name: "double tagged entry counts on both sides",
			entries: []models.FinancialEntry{
				entry("e1", "u1", 100, "s1", ""),
				entry("e2", "u1", 30, "s1", "c1"),
			},
			want: "100",
		},
		{
			name: "other month ignored",
			entries: []models.FinancialEntry{
				entry("e1", "u1", 100, "s1", ""),
				func() models.FinancialEntry {
					e := entry("e2", "u1", 500, "s1", "")
					e.Month = 2
					return e
				}(),
			},
			want: "100",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{entries: tc.entries}
			got := newTestAggregator(src).Summarize(context.Background(), "u1", models.PulseSummary{})
			if !got.CashflowNet.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("CashflowNet = %s, want %s", got.CashflowNet, tc.want)
			}
		})
	}
}

func TestSummarizeDecimalPrecision(t *testing.T) {
	a := entry("e1", "u1", 0, "s1", "")
	a.Amount = decimal.RequireFromString("0.10")
	b := entry("e2", "u1", 0, "s1", "")
	b.Amount = decimal.RequireFromString("0.20")
	c := entry("e3", "u1", 0, "", "c1")
	c.Amount = decimal.RequireFromString("0.30")

	src := &fakeSource{entries: []models.FinancialEntry{a, b, c}}
	got := newTestAggregator(src).Summarize(context.Background(), "u1", models.PulseSummary{})
	if !got.CashflowNet.IsZero() {
		t.Fatalf("CashflowNet = %s, want exactly 0", got.CashflowNet)
	}
}

func TestSummarizeWithoutOwnerIssuesNoReads(t *testing.T) {
	src := &fakeSource{alerts: []models.Alert{{ID: "a1", OwnerID: "", Severity: models.SeverityHigh}}}
	prev := models.PulseSummary{AlertsHigh: 3, TasksDueToday: 2, CashflowNet: decimal.NewFromInt(9), IsLoading: true}

	got := newTestAggregator(src).Summarize(context.Background(), "", prev)
	if diff := cmp.Diff(models.PulseSummary{}, got, summaryCmp); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if n := src.callCount(); n != 0 {
		t.Fatalf("data service calls = %d, want 0", n)
	}
}

func TestSummarizeFailedReadKeepsPreviousValue(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := &fakeSource{
		alertsErr: errBoom,
		tasks:     []models.Task{{ID: "t1", OwnerID: "u1", Status: models.TaskPending, DueDate: today}},
		entries:   []models.FinancialEntry{entry("e1", "u1", 100, "s1", ""), entry("e2", "u1", 40, "", "c1")},
	}
	agg := New(src, zap.New(core), WithClock(func() time.Time { return fixedNow }))

	first := agg.Summarize(context.Background(), "u1", models.PulseSummary{})
	want := models.PulseSummary{AlertsHigh: 0, TasksDueToday: 1, CashflowNet: decimal.NewFromInt(60)}
	if diff := cmp.Diff(want, first, summaryCmp); diff != "" {
		t.Fatalf("first summary mismatch (-want +got):\n%s", diff)
	}

	prev := models.PulseSummary{AlertsHigh: 4, TasksDueToday: 9, CashflowNet: decimal.NewFromInt(-1), IsLoading: true}
	second := agg.Summarize(context.Background(), "u1", prev)
	want = models.PulseSummary{AlertsHigh: 4, TasksDueToday: 1, CashflowNet: decimal.NewFromInt(60)}
	if diff := cmp.Diff(want, second, summaryCmp); diff != "" {
		t.Fatalf("second summary mismatch (-want +got):\n%s", diff)
	}

	failures := logs.FilterMessage("pulse read failed").All()
	if len(failures) != 2 {
		t.Fatalf("logged failures = %d, want 2", len(failures))
	}
	if got := failures[0].ContextMap()["metric"]; got != string(MetricAlerts) {
		t.Fatalf("logged metric = %v, want %s", got, MetricAlerts)
	}
}

// lateSource holds task and entry reads until release is closed.
type lateSource struct {
	*fakeSource
	release chan struct{}
}

func (l lateSource) Tasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	<-l.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.fakeSource.Tasks(ctx, filter)
}

func (l lateSource) FinancialEntries(ctx context.Context, filter EntryFilter) ([]models.FinancialEntry, error) {
	<-l.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.fakeSource.FinancialEntries(ctx, filter)
}

func TestSummarizeEarlyFailureLeavesSiblingsRunning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := lateSource{
		fakeSource: &fakeSource{
			alertsErr: errBoom,
			tasks:     []models.Task{{ID: "t1", OwnerID: "u1", Status: models.TaskPending, DueDate: today}},
			entries:   []models.FinancialEntry{entry("e1", "u1", 100, "s1", "")},
		},
		release: make(chan struct{}),
	}
	agg := New(src, zap.New(core), WithClock(func() time.Time { return fixedNow }))

	done := make(chan models.PulseSummary)
	go func() {
		done <- agg.Summarize(context.Background(), "u1", models.PulseSummary{})
	}()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("pulse read failed").Len() == 1
	}, testTimeout, testTick)
	close(src.release)

	got := <-done
	want := models.PulseSummary{TasksDueToday: 1, CashflowNet: decimal.NewFromInt(100)}
	if diff := cmp.Diff(want, got, summaryCmp); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeAllReadsFail(t *testing.T) {
	src := &fakeSource{alertsErr: errBoom, tasksErr: errBoom, entriesErr: errBoom}

	got := newTestAggregator(src).Summarize(context.Background(), "u1", models.PulseSummary{})
	if diff := cmp.Diff(models.PulseSummary{}, got, summaryCmp); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	src := &fakeSource{
		alerts:  []models.Alert{{ID: "a1", OwnerID: "u1", Severity: models.SeverityHigh}},
		tasks:   []models.Task{{ID: "t1", OwnerID: "u1", Status: models.TaskPending, DueDate: today}},
		entries: []models.FinancialEntry{entry("e1", "u1", 100, "s1", "")},
	}
	agg := newTestAggregator(src)

	first := agg.Summarize(context.Background(), "u1", models.PulseSummary{})
	second := agg.Summarize(context.Background(), "u1", first)
	if diff := cmp.Diff(first, second, summaryCmp); diff != "" {
		t.Fatalf("summaries differ (-first +second):\n%s", diff)
	}
}

func TestCollectUsesLocalCalendar(t *testing.T) {
	// 23:30 on March 31 in UTC-5 is already April 1 in UTC.
	zone := time.FixedZone("EST", -5*60*60)
	now := time.Date(2026, time.March, 31, 23, 30, 0, 0, zone)
	src := &fakeSource{}
	agg := New(src, nil, WithClock(func() time.Time { return now }))

	agg.Summarize(context.Background(), "u1", models.PulseSummary{})

	wantAlert := AlertFilter{OwnerID: "u1", Severity: models.SeverityHigh, Dismissed: false}
	wantTask := TaskFilter{OwnerID: "u1", Status: models.TaskPending, DueDate: "2026-03-31"}
	wantEntry := EntryFilter{OwnerID: "u1", Month: 3, Year: 2026}
	if diff := cmp.Diff([]AlertFilter{wantAlert}, src.alertFilters); diff != "" {
		t.Fatalf("alert filter mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]TaskFilter{wantTask}, src.taskFilters); diff != "" {
		t.Fatalf("task filter mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]EntryFilter{wantEntry}, src.entryFilters); diff != "" {
		t.Fatalf("entry filter mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectLogsDoubleTaggedEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	src := &fakeSource{entries: []models.FinancialEntry{entry("e9", "u1", 10, "s1", "c1")}}
	agg := New(src, zap.New(core), WithClock(func() time.Time { return fixedNow }))

	agg.Summarize(context.Background(), "u1", models.PulseSummary{})

	entries := logs.FilterField(zap.String("entry_id", "e9")).All()
	if len(entries) != 1 {
		t.Fatalf("double-tag log entries = %d, want 1", len(entries))
	}
}

func TestFetchErrorUnwraps(t *testing.T) {
	err := error(&FetchError{Metric: MetricTasks, OwnerID: "u1", Err: errBoom})
	if !errors.Is(err, errBoom) {
		t.Fatal("errors.Is(FetchError, cause) = false")
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Metric != MetricTasks {
		t.Fatalf("errors.As metric = %v, want %s", fe, MetricTasks)
	}
}
