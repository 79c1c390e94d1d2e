package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// FinancialEntry is income when SourceID is set and an expense when
// CategoryID is set. Nothing prevents both from being set.
type FinancialEntry struct {
	ID          string
	OwnerID     string
	Amount      decimal.Decimal
	SourceID    sql.NullString
	CategoryID  sql.NullString
	Month       int
	Year        int
	Description sql.NullString
	CreatedAt   string
}

type FinancialEntryView struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Amount      decimal.Decimal `json:"amount"`
	SourceID    *string         `json:"source_id"`
	CategoryID  *string         `json:"category_id"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"created_at"`
}

func (e *FinancialEntry) IsIncome() bool {
	return e.SourceID.Valid
}

func (e *FinancialEntry) IsExpense() bool {
	return e.CategoryID.Valid
}

func (e *FinancialEntry) ToView() FinancialEntryView {
	view := FinancialEntryView{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		Amount:    e.Amount,
		Month:     e.Month,
		Year:      e.Year,
		CreatedAt: e.CreatedAt,
	}
	if e.SourceID.Valid {
		s := e.SourceID.String
		view.SourceID = &s
	}
	if e.CategoryID.Valid {
		c := e.CategoryID.String
		view.CategoryID = &c
	}
	if e.Description.Valid {
		view.Description = e.Description.String
	}
	return view
}

type CreateEntryRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	SourceID    string          `json:"source_id"`
	CategoryID  string          `json:"category_id"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Description string          `json:"description"`
}

// IncomeSource tags an entry as income.
type IncomeSource struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
}

// ExpenseCategory tags an entry as an expense.
type ExpenseCategory struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
}
