package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"architecta/internal/models"
	"architecta/internal/pulse"
)

const entryColumns = `id, owner_id, amount, source_id, category_id, month, year, description, created_at`

func (r *Repository) CreateIncomeSource(ctx context.Context, ownerID, name string) (*models.IncomeSource, error) {
	s := &models.IncomeSource{ID: uuid.New().String(), OwnerID: ownerID, Name: name}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO income_sources (id, owner_id, name) VALUES (?, ?, ?)`, s.ID, s.OwnerID, s.Name)
	if err != nil {
		return nil, fmt.Errorf("create income source: %w", err)
	}
	return s, nil
}

func (r *Repository) ListIncomeSources(ctx context.Context, ownerID string) ([]models.IncomeSource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name FROM income_sources WHERE owner_id = ? ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	defer rows.Close()

	var sources []models.IncomeSource
	for rows.Next() {
		var s models.IncomeSource
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *Repository) CreateExpenseCategory(ctx context.Context, ownerID, name string) (*models.ExpenseCategory, error) {
	c := &models.ExpenseCategory{ID: uuid.New().String(), OwnerID: ownerID, Name: name}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_categories (id, owner_id, name) VALUES (?, ?, ?)`, c.ID, c.OwnerID, c.Name)
	if err != nil {
		return nil, fmt.Errorf("create expense category: %w", err)
	}
	return c, nil
}

func (r *Repository) ListExpenseCategories(ctx context.Context, ownerID string) ([]models.ExpenseCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name FROM expense_categories WHERE owner_id = ? ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	defer rows.Close()

	var categories []models.ExpenseCategory
	for rows.Next() {
		var c models.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateFinancialEntry stores an entry. Source and category are both
// optional and may both be set; each must belong to ownerID.
func (r *Repository) CreateFinancialEntry(ctx context.Context, ownerID string, req models.CreateEntryRequest) (*models.FinancialEntry, error) {
	if err := r.requireOwned(ctx, "income_sources", ownerID, req.SourceID); err != nil {
		return nil, err
	}
	if err := r.requireOwned(ctx, "expense_categories", ownerID, req.CategoryID); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO financial_entries (id, owner_id, amount, source_id, category_id, month, year, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ownerID, req.Amount.String(), nullString(req.SourceID), nullString(req.CategoryID),
		req.Month, req.Year, nullString(req.Description),
	)
	if err != nil {
		return nil, fmt.Errorf("create financial entry: %w", err)
	}
	return r.GetFinancialEntry(ctx, ownerID, id)
}

// requireOwned returns ErrInvalidReference unless id is empty or names a
// row of table owned by ownerID.
func (r *Repository) requireOwned(ctx context.Context, table, ownerID, id string) error {
	if id == "" {
		return nil
	}
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM `+table+` WHERE id = ? AND owner_id = ?`, id, ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", ErrInvalidReference, table, id)
	}
	if err != nil {
		return fmt.Errorf("check %s reference: %w", table, err)
	}
	return nil
}

func (r *Repository) GetFinancialEntry(ctx context.Context, ownerID, id string) (*models.FinancialEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM financial_entries WHERE id = ? AND owner_id = ?`, id, ownerID)
	e, err := scanEntry(row)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *Repository) DeleteFinancialEntry(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM financial_entries WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete financial entry: %w", err)
	}
	return requireAffected(result)
}

// ListFinancialEntries returns an owner's entries for one month.
func (r *Repository) ListFinancialEntries(ctx context.Context, ownerID string, month, year int) ([]models.FinancialEntry, error) {
	return r.FinancialEntries(ctx, pulse.EntryFilter{OwnerID: ownerID, Month: month, Year: year})
}

// FinancialEntries implements pulse.Source.
func (r *Repository) FinancialEntries(ctx context.Context, f pulse.EntryFilter) ([]models.FinancialEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM financial_entries
		WHERE owner_id = ? AND month = ? AND year = ?
		ORDER BY created_at ASC, rowid ASC
	`, f.OwnerID, f.Month, f.Year)
	if err != nil {
		return nil, fmt.Errorf("query financial entries: %w", err)
	}
	defer rows.Close()

	var entries []models.FinancialEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan financial entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(row rowScanner) (*models.FinancialEntry, error) {
	var e models.FinancialEntry
	var amount string
	err := row.Scan(
		&e.ID, &e.OwnerID, &amount, &e.SourceID, &e.CategoryID,
		&e.Month, &e.Year, &e.Description, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("entry %s amount %q: %w", e.ID, amount, err)
	}
	return &e, nil
}
