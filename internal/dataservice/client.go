// Package dataservice reads pulse records from the hosted backend over its
// REST query interface (PostgREST-style equality filters).
package dataservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"architecta/internal/models"
	"architecta/internal/pulse"
)

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ pulse.Source = (*Client)(nil)

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type alertRow struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Severity    string `json:"severity"`
	IsDismissed bool   `json:"is_dismissed"`
	Title       string `json:"title"`
	CreatedAt   string `json:"created_at"`
}

type taskRow struct {
	ID        string  `json:"id"`
	OwnerID   string  `json:"owner_id"`
	Status    string  `json:"status"`
	DueDate   *string `json:"due_date"`
	Title     string  `json:"title"`
	CreatedAt string  `json:"created_at"`
}

type entryRow struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Amount      decimal.Decimal `json:"amount"`
	SourceID    *string         `json:"source_id"`
	CategoryID  *string         `json:"category_id"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Description *string         `json:"description"`
	CreatedAt   string          `json:"created_at"`
}

// Alerts implements pulse.Source.
func (c *Client) Alerts(ctx context.Context, f pulse.AlertFilter) ([]models.Alert, error) {
	var rows []alertRow
	err := c.query(ctx, "alerts", url.Values{
		"owner_id":     {eq(f.OwnerID)},
		"is_dismissed": {eq(strconv.FormatBool(f.Dismissed))},
		"severity":     {eq(f.Severity)},
	}, &rows)
	if err != nil {
		return nil, err
	}

	alerts := make([]models.Alert, 0, len(rows))
	for _, r := range rows {
		alerts = append(alerts, models.Alert(r))
	}
	return alerts, nil
}

// Tasks implements pulse.Source.
func (c *Client) Tasks(ctx context.Context, f pulse.TaskFilter) ([]models.Task, error) {
	var rows []taskRow
	err := c.query(ctx, "tasks", url.Values{
		"owner_id": {eq(f.OwnerID)},
		"status":   {eq(f.Status)},
		"due_date": {eq(f.DueDate)},
	}, &rows)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		t := models.Task{
			ID:        r.ID,
			OwnerID:   r.OwnerID,
			Status:    r.Status,
			Title:     r.Title,
			CreatedAt: r.CreatedAt,
		}
		if r.DueDate != nil {
			t.DueDate = *r.DueDate
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// FinancialEntries implements pulse.Source.
func (c *Client) FinancialEntries(ctx context.Context, f pulse.EntryFilter) ([]models.FinancialEntry, error) {
	var rows []entryRow
	err := c.query(ctx, "financial_entries", url.Values{
		"owner_id": {eq(f.OwnerID)},
		"month":    {eq(strconv.Itoa(f.Month))},
		"year":     {eq(strconv.Itoa(f.Year))},
	}, &rows)
	if err != nil {
		return nil, err
	}

	entries := make([]models.FinancialEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, models.FinancialEntry{
			ID:          r.ID,
			OwnerID:     r.OwnerID,
			Amount:      r.Amount,
			SourceID:    nullable(r.SourceID),
			CategoryID:  nullable(r.CategoryID),
			Month:       r.Month,
			Year:        r.Year,
			Description: nullable(r.Description),
			CreatedAt:   r.CreatedAt,
		})
	}
	return entries, nil
}

func (c *Client) query(ctx context.Context, table string, filters url.Values, out interface{}) error {
	filters.Set("select", "*")
	reqURL := c.endpoint + "/rest/v1/" + table + "?" + filters.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("data service error on %s (status %d): %s", table, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", table, err)
	}
	return nil
}

func eq(v string) string {
	return "eq." + v
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
