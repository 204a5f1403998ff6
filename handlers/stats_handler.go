package handlers

import (
	"context"
	"net/http"
	"time"

	"shortdiaryAPI/middleware"
	"shortdiaryAPI/services"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

func (h *StatsHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	currentStreak, err := h.statsService.GetStreak(ctx, username)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute streak")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"streak": currentStreak})
}

func (h *StatsHandler) GetLeaderboards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, ok := middleware.GetUsername(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	boards, err := h.statsService.GetLeaderboards(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to build leaderboards")
		return
	}

	respondWithJSON(w, http.StatusOK, boards)
}
