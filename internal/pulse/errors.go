package pulse

import "fmt"

type Metric string

const (
	MetricAlerts   Metric = "alerts_high"
	MetricTasks    Metric = "tasks_due_today"
	MetricCashflow Metric = "cashflow_net"
)

// FetchError is a failed read against the data service. It is logged and
// never returned to pulse consumers.
type FetchError struct {
	Metric  Metric
	OwnerID string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for owner %s: %v", e.Metric, e.OwnerID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
