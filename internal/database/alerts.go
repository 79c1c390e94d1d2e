package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"architecta/internal/models"
	"architecta/internal/pulse"
)

const alertColumns = `id, owner_id, severity, is_dismissed, title, created_at`

func (r *Repository) CreateAlert(ctx context.Context, ownerID string, req models.CreateAlertRequest) (*models.Alert, error) {
	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alerts (id, owner_id, severity, title) VALUES (?, ?, ?, ?)`,
		id, ownerID, req.Severity, req.Title,
	)
	if err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	return r.GetAlert(ctx, ownerID, id)
}

func (r *Repository) GetAlert(ctx context.Context, ownerID, id string) (*models.Alert, error) {
	var a models.Alert
	err := r.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&a.ID, &a.OwnerID, &a.Severity, &a.IsDismissed, &a.Title, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *Repository) DismissAlert(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET is_dismissed = 1 WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("dismiss alert: %w", err)
	}
	return requireAffected(result)
}

// ListAlerts returns all of an owner's alerts, newest first.
func (r *Repository) ListAlerts(ctx context.Context, ownerID string) ([]models.Alert, error) {
	return r.queryAlerts(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC`, ownerID)
}

// Alerts implements pulse.Source.
func (r *Repository) Alerts(ctx context.Context, f pulse.AlertFilter) ([]models.Alert, error) {
	return r.queryAlerts(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE owner_id = ? AND is_dismissed = ? AND severity = ?
	`, f.OwnerID, f.Dismissed, f.Severity)
}

func (r *Repository) queryAlerts(ctx context.Context, query string, args ...interface{}) ([]models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Severity, &a.IsDismissed, &a.Title, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
