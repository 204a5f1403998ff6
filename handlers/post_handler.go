package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"shortdiaryAPI/internal/post"
	"shortdiaryAPI/middleware"
	"shortdiaryAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req post.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.postService.CreatePost(ctx, username, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateDate):
			respondWithError(w, http.StatusConflict, "You already have an entry for that day")
		case errors.Is(err, services.ErrInvalidDate):
			respondWithError(w, http.StatusBadRequest, "Invalid date. You can't go that far back.")
		case errors.Is(err, services.ErrTextTooLong):
			respondWithError(w, http.StatusBadRequest, "Entry text is too long")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create post")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	p, err := h.postService.GetPost(ctx, id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	// Private entries are only visible to their author.
	if !p.Public && p.Author != username {
		respondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *PostHandler) ListRecentPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	posts, err := h.postService.ListRecentPosts(ctx, username)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list posts")
		return
	}

	respondWithJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req post.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.postService.UpdatePost(ctx, username, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			respondWithError(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, services.ErrNotEditable):
			respondWithError(w, http.StatusForbidden, "This post can no longer be edited")
		case errors.Is(err, services.ErrTextTooLong):
			respondWithError(w, http.StatusBadRequest, "Entry text is too long")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update post")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	if err := h.postService.DeletePost(ctx, username, id); err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			respondWithError(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, services.ErrNotEditable):
			respondWithError(w, http.StatusForbidden, "This post can no longer be deleted")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to delete post")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RandomPublicPost serves the front page teaser. Unauthenticated route.
func (h *PostHandler) RandomPublicPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.postService.RandomPublicPost(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	if p == nil {
		respondWithError(w, http.StatusNotFound, "No public posts yet")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *PostHandler) YearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	username, ok := middleware.GetUsername(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	year := time.Now().UTC().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}

	grid, err := h.postService.YearHistory(ctx, username, year)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to build year history")
		return
	}

	respondWithJSON(w, http.StatusOK, grid)
}
