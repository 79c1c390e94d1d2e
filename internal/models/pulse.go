package models

import "github.com/shopspring/decimal"

// PulseSummary is the quick-pulse view of an owner's alerts, tasks and
// current-month cashflow. It is never persisted.
type PulseSummary struct {
	AlertsHigh    int             `json:"alerts_high"`
	TasksDueToday int             `json:"tasks_due_today"`
	CashflowNet   decimal.Decimal `json:"cashflow_net"`
	IsLoading     bool            `json:"is_loading"`
}
