package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"architecta/internal/database"
	"architecta/internal/onboarding"
	"architecta/internal/pulse"
)

const (
	ownerCookie = "arch_owner_id"
	ownerHeader = "X-Owner-ID"
)

type Handler struct {
	repo        *database.Repository
	pulse       *pulse.Aggregator
	onboarding  *onboarding.Service
	logger      *zap.Logger
	trustHeader bool
}

type Option func(*Handler)

// WithOwnerHeader makes the X-Owner-ID request header an accepted identity.
// The header is not authenticated; enable it only behind a proxy that sets it.
func WithOwnerHeader() Option {
	return func(h *Handler) { h.trustHeader = true }
}

func New(repo *database.Repository, agg *pulse.Aggregator, onboard *onboarding.Service, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		repo:       repo,
		pulse:      agg,
		onboarding: onboard,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the API on a chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// API - Pulse
	r.Get("/api/pulse", h.Pulse)
	r.Get("/api/pulse/stream", h.PulseStream)

	// API - Alerts
	r.Get("/api/alerts", h.ListAlerts)
	r.Post("/api/alerts", h.CreateAlert)
	r.Post("/api/alerts/{id}/dismiss", h.DismissAlert)

	// API - Tasks
	r.Get("/api/tasks", h.ListTasks)
	r.Post("/api/tasks", h.CreateTask)
	r.Post("/api/tasks/{id}/complete", h.CompleteTask)

	// API - Finance
	r.Get("/api/entries", h.ListEntries)
	r.Post("/api/entries", h.CreateEntry)
	r.Delete("/api/entries/{id}", h.DeleteEntry)
	r.Get("/api/sources", h.ListSources)
	r.Post("/api/sources", h.CreateSource)
	r.Get("/api/categories", h.ListCategories)
	r.Post("/api/categories", h.CreateCategory)

	// API - Users
	r.Get("/api/users", h.ListUsers)
	r.Post("/api/users", h.CreateUser)
	r.Post("/api/users/select", h.SelectUser)
	r.Delete("/api/users/{id}", h.DeleteUser)

	// API - Onboarding
	r.Get("/api/onboarding", h.GetOnboarding)
	r.Put("/api/onboarding", h.SetOnboarding)

	return r
}

// ownerID returns the caller's identity: the X-Owner-ID header when the
// handler trusts it and it is present, otherwise the owner cookie. An empty
// result means no identity.
func (h *Handler) ownerID(r *http.Request) string {
	if h.trustHeader {
		if id := strings.TrimSpace(r.Header.Get(ownerHeader)); id != "" {
			return id
		}
	}
	if cookie, err := r.Cookie(ownerCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

// requireOwner writes 401 and returns false when the request has no identity.
func (h *Handler) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := h.ownerID(r)
	if id == "" {
		http.Error(w, "Owner identity required", http.StatusUnauthorized)
		return "", false
	}
	return id, true
}

func (h *Handler) setOwnerCookie(w http.ResponseWriter, ownerID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     ownerCookie,
		Value:    ownerID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearOwnerCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     ownerCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps repository errors to a status and logs anything that
// is not the caller's fault.
func (h *Handler) respondError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
		return
	case errors.Is(err, database.ErrInvalidReference):
		http.Error(w, "Unknown source or category", http.StatusBadRequest)
		return
	}
	h.logger.Error(msg, zap.Error(err))
	http.Error(w, msg, http.StatusInternalServerError)
}
