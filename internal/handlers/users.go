package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"architecta/internal/models"
)

type createUserRequest struct {
	Name string `json:"name"`
}

type selectUserRequest struct {
	UserID int64 `json:"user_id"`
}

type onboardingRequest struct {
	Completed bool `json:"completed"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, err, "Failed to load users")
		return
	}
	if users == nil {
		users = []models.User{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"current_owner_id": h.ownerID(r),
		"users":            users,
	})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	user, err := h.repo.CreateUser(r.Context(), name)
	if err != nil {
		http.Error(w, "Failed to create user", http.StatusBadRequest)
		return
	}

	h.setOwnerCookie(w, user.OwnerID())
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) SelectUser(w http.ResponseWriter, r *http.Request) {
	var req selectUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.UserID == 0 {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}

	user, err := h.repo.GetUser(r.Context(), req.UserID)
	if err != nil {
		h.respondError(w, err, "Failed to load user")
		return
	}

	h.setOwnerCookie(w, user.OwnerID())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"owner_id": user.OwnerID(),
	})
}

// DeleteUser handles DELETE /api/users/{id}. Deleting the current user also
// clears the owner cookie.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.repo.DeleteUser(r.Context(), id); err != nil {
		h.respondError(w, err, "Failed to delete user")
		return
	}

	if h.ownerID(r) == strconv.FormatInt(id, 10) {
		h.clearOwnerCookie(w)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// GetOnboarding handles GET /api/onboarding
func (h *Handler) GetOnboarding(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	done, err := h.onboarding.Completed(r.Context(), owner)
	if err != nil {
		h.respondError(w, err, "Failed to load onboarding state")
		return
	}
	respondJSON(w, http.StatusOK, onboardingRequest{Completed: done})
}

// SetOnboarding handles PUT /api/onboarding
func (h *Handler) SetOnboarding(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var req onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.onboarding.SetCompleted(r.Context(), owner, req.Completed); err != nil {
		h.respondError(w, err, "Failed to save onboarding state")
		return
	}
	respondJSON(w, http.StatusOK, req)
}
