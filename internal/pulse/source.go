package pulse

import (
	"context"

	"architecta/internal/models"
)

// Source is the data service the pulse reads from. Every filter is an
// equality match; a zero-value field other than OwnerID is still applied.
type Source interface {
	Alerts(ctx context.Context, f AlertFilter) ([]models.Alert, error)
	Tasks(ctx context.Context, f TaskFilter) ([]models.Task, error)
	FinancialEntries(ctx context.Context, f EntryFilter) ([]models.FinancialEntry, error)
}

type AlertFilter struct {
	OwnerID   string
	Severity  string
	Dismissed bool
}

type TaskFilter struct {
	OwnerID string
	Status  string
	DueDate string // YYYY-MM-DD
}

type EntryFilter struct {
	OwnerID string
	Month   int
	Year    int
}

// Identity is what the identity provider publishes: the signed-in owner,
// and whether authentication is still resolving.
type Identity struct {
	OwnerID string
	Loading bool
}
