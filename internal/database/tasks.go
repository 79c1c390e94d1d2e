package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"architecta/internal/models"
	"architecta/internal/pulse"
)

const taskColumns = `id, owner_id, status, due_date, title, created_at`

func (r *Repository) CreateTask(ctx context.Context, ownerID string, req models.CreateTaskRequest) (*models.Task, error) {
	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, owner_id, status, due_date, title) VALUES (?, ?, 'pending', ?, ?)`,
		id, ownerID, nullString(req.DueDate), req.Title,
	)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return r.GetTask(ctx, ownerID, id)
}

func (r *Repository) GetTask(ctx context.Context, ownerID, id string) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTask(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *Repository) CompleteTask(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = 'done' WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return requireAffected(result)
}

// ListTasks returns an owner's tasks ordered by due date; undated tasks last.
func (r *Repository) ListTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	return r.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE owner_id = ?
		ORDER BY due_date IS NULL, due_date ASC, created_at ASC
	`, ownerID)
}

// Tasks implements pulse.Source.
func (r *Repository) Tasks(ctx context.Context, f pulse.TaskFilter) ([]models.Task, error) {
	return r.queryTasks(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = ? AND status = ? AND due_date = ?
	`, f.OwnerID, f.Status, f.DueDate)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var due sql.NullString
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Status, &due, &t.Title, &t.CreatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueDate = due.String
	}
	return &t, nil
}

func (r *Repository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
