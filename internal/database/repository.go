package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"architecta/internal/models"
	"architecta/internal/pulse"
)

// ErrNotFound is returned when a lookup or update matches no row owned by
// the caller.
var ErrNotFound = errors.New("record not found")

// ErrInvalidReference is returned when a write names a related record that
// does not exist for the caller.
var ErrInvalidReference = errors.New("invalid reference")

type Repository struct {
	db *sql.DB
}

var _ pulse.Source = (*Repository)(nil)

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) CreateUser(ctx context.Context, name string) (*models.User, error) {
	result, err := r.db.ExecContext(ctx, `INSERT INTO users (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.User{ID: id, Name: name}, nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM users WHERE id = ?`, id).Scan(&user.ID, &user.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// DeleteUser removes the user and every record owned by them.
func (r *Repository) DeleteUser(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	// Entries reference sources and categories, so they go first.
	owner := strconv.FormatInt(id, 10)
	for _, table := range []string{"financial_entries", "income_sources", "expense_categories", "alerts", "tasks", "user_settings"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE owner_id = ?`, owner); err != nil {
			return fmt.Errorf("delete %s for user %d: %w", table, id, err)
		}
	}
	return tx.Commit()
}

// notFound maps sql.ErrNoRows to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// requireAffected turns a zero-row update or delete into ErrNotFound.
func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Helper functions for nullable fields
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
