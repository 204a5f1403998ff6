package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shortdiaryAPI/internal/user"
	"shortdiaryAPI/middleware"
	"shortdiaryAPI/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	stats, err := h.userService.GetProfileStats(ctx, username)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute profile stats")
		return
	}

	respondWithJSON(w, http.StatusOK, &user.ProfileResponse{User: u, Stats: stats})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.userService.UpdateProfile(ctx, username, &req)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) GetProfileStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	stats, err := h.userService.GetProfileStats(ctx, username)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute profile stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
