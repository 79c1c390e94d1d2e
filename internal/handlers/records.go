package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"architecta/internal/models"
)

// ListAlerts handles GET /api/alerts
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	alerts, err := h.repo.ListAlerts(r.Context(), owner)
	if err != nil {
		h.respondError(w, err, "Failed to load alerts")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	respondJSON(w, http.StatusOK, alerts)
}

// CreateAlert handles POST /api/alerts
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req models.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Severity = strings.ToLower(strings.TrimSpace(req.Severity))
	if !models.ValidSeverity(req.Severity) {
		http.Error(w, "Severity must be low, medium or high", http.StatusBadRequest)
		return
	}

	alert, err := h.repo.CreateAlert(r.Context(), owner, req)
	if err != nil {
		h.respondError(w, err, "Failed to create alert")
		return
	}
	respondJSON(w, http.StatusCreated, alert)
}

// DismissAlert handles POST /api/alerts/{id}/dismiss
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.repo.DismissAlert(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err, "Failed to dismiss alert")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ListTasks handles GET /api/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	tasks, err := h.repo.ListTasks(r.Context(), owner)
	if err != nil {
		h.respondError(w, err, "Failed to load tasks")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}
	if req.DueDate != "" {
		if _, err := time.Parse(models.DateLayout, req.DueDate); err != nil {
			http.Error(w, "Due date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	task, err := h.repo.CreateTask(r.Context(), owner, req)
	if err != nil {
		h.respondError(w, err, "Failed to create task")
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// CompleteTask handles POST /api/tasks/{id}/complete
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.repo.CompleteTask(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err, "Failed to complete task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// ListEntries handles GET /api/entries, defaulting to the current month
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	month, year, err := getPeriod(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.repo.ListFinancialEntries(r.Context(), owner, month, year)
	if err != nil {
		h.respondError(w, err, "Failed to load entries")
		return
	}

	views := make([]models.FinancialEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, e.ToView())
	}
	respondJSON(w, http.StatusOK, views)
}

// CreateEntry handles POST /api/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req models.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Month < 1 || req.Month > 12 {
		http.Error(w, "Month must be between 1 and 12", http.StatusBadRequest)
		return
	}
	if req.Year < 1 {
		http.Error(w, "Year is required", http.StatusBadRequest)
		return
	}
	if req.SourceID != "" && req.CategoryID != "" {
		h.logger.Warn("entry tagged as both income and expense",
			zap.String("owner_id", owner),
			zap.String("source_id", req.SourceID),
			zap.String("category_id", req.CategoryID))
	}

	entry, err := h.repo.CreateFinancialEntry(r.Context(), owner, req)
	if err != nil {
		h.respondError(w, err, "Failed to create entry")
		return
	}
	respondJSON(w, http.StatusCreated, entry.ToView())
}

// DeleteEntry handles DELETE /api/entries/{id}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteFinancialEntry(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err, "Failed to delete entry")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

var (
	errBadMonth = errors.New("month must be between 1 and 12")
	errBadYear  = errors.New("year must be a positive integer")
)

type namedRequest struct {
	Name string `json:"name"`
}

// ListSources handles GET /api/sources
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	sources, err := h.repo.ListIncomeSources(r.Context(), owner)
	if err != nil {
		h.respondError(w, err, "Failed to load sources")
		return
	}
	if sources == nil {
		sources = []models.IncomeSource{}
	}
	respondJSON(w, http.StatusOK, sources)
}

// CreateSource handles POST /api/sources
func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	name, ok := decodeName(w, r)
	if !ok {
		return
	}
	source, err := h.repo.CreateIncomeSource(r.Context(), owner, name)
	if err != nil {
		http.Error(w, "Failed to create source", http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, source)
}

// ListCategories handles GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	categories, err := h.repo.ListExpenseCategories(r.Context(), owner)
	if err != nil {
		h.respondError(w, err, "Failed to load categories")
		return
	}
	if categories == nil {
		categories = []models.ExpenseCategory{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	name, ok := decodeName(w, r)
	if !ok {
		return
	}
	category, err := h.repo.CreateExpenseCategory(r.Context(), owner, name)
	if err != nil {
		http.Error(w, "Failed to create category", http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func decodeName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return "", false
	}
	return name, true
}

// getPeriod reads month/year query params, defaulting to the current month
func getPeriod(r *http.Request) (int, int, error) {
	now := time.Now()
	month, year := int(now.Month()), now.Year()

	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, errBadMonth
		}
		month = parsed
	}
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return 0, 0, errBadYear
		}
		year = parsed
	}
	return month, year, nil
}
