package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"shortdiaryAPI/internal/post"

	"github.com/jackc/pgx/v5/pgxpool"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL. These
// tests exercise the real unique constraint and are skipped when no test
// database is available.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return pool
}

func cleanupTestUser(t *testing.T, pool *pgxpool.Pool, username string) {
	ctx := context.Background()
	if _, err := pool.Exec(ctx, "DELETE FROM posts WHERE author = $1", username); err != nil {
		t.Logf("Warning: failed to cleanup test posts: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM users WHERE username = $1", username); err != nil {
		t.Logf("Warning: failed to cleanup test user: %v", err)
	}
}

func TestCreatePostDuplicateDate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	username := fmt.Sprintf("testuser_%d", time.Now().UnixNano())
	defer cleanupTestUser(t, pool, username)

	postSvc := NewPostService(pool, 3)
	userSvc := NewUserService(pool, nil)

	if _, err := userSvc.EnsureUser(ctx, username, username+"@example.com"); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	today := time.Now().UTC().Format("2006-01-02")

	first, err := postSvc.CreatePost(ctx, username, &post.CreatePostRequest{
		Date: today,
		Text: "first entry of the day",
		Mood: 7,
	})
	if err != nil {
		t.Fatalf("First CreatePost failed: %v", err)
	}

	_, err = postSvc.CreatePost(ctx, username, &post.CreatePostRequest{
		Date: today,
		Text: "second entry for the same day",
		Mood: 3,
	})
	if !errors.Is(err, ErrDuplicateDate) {
		t.Fatalf("Second CreatePost error = %v, want ErrDuplicateDate", err)
	}

	// The first post must be untouched by the rejected duplicate.
	stored, err := postSvc.GetPost(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if stored.Text != "first entry of the day" || stored.Mood != 7 {
		t.Errorf("first post changed after duplicate attempt: %+v", stored)
	}

	count, err := postSvc.CountForUser(ctx, username)
	if err != nil {
		t.Fatalf("CountForUser failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CountForUser = %d, want 1", count)
	}
}

func TestCreatePostRejectsOldDates(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	username := fmt.Sprintf("testuser_%d", time.Now().UnixNano())
	defer cleanupTestUser(t, pool, username)

	postSvc := NewPostService(pool, 3)
	userSvc := NewUserService(pool, nil)

	if _, err := userSvc.EnsureUser(ctx, username, username+"@example.com"); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	lastWeek := time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")
	if _, err := postSvc.CreatePost(ctx, username, &post.CreatePostRequest{
		Date: lastWeek,
		Text: "backdated entry",
		Mood: 5,
	}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("CreatePost for old date error = %v, want ErrInvalidDate", err)
	}
}
