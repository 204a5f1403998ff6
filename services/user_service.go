package services

import (
	"context"
	"errors"
	"fmt"

	"shortdiaryAPI/internal/user"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	db    *pgxpool.Pool
	stats *StatsService
}

func NewUserService(db *pgxpool.Pool, stats *StatsService) *UserService {
	return &UserService{db: db, stats: stats}
}

// EnsureUser upserts the account row for an authenticated username. Accounts
// are provisioned by the auth system; this only keeps the local row in step.
func (s *UserService) EnsureUser(ctx context.Context, username string, email string) (*user.User, error) {
	query := `
	INSERT INTO users (username, email, language, geolocation_enabled, created_at, updated_at)
	VALUES ($1, $2, 'en_US', true, NOW(), NOW())
	ON CONFLICT (username) DO UPDATE SET updated_at = NOW()
	RETURNING username, email, language, geolocation_enabled, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, username, email).Scan(
		&u.Username,
		&u.Email,
		&u.Language,
		&u.GeolocationEnabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `
	SELECT username, email, language, geolocation_enabled, created_at, updated_at
	FROM users
	WHERE username = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, username).Scan(
		&u.Username,
		&u.Email,
		&u.Language,
		&u.GeolocationEnabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, username string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET
		email = COALESCE(NULLIF($2, ''), email),
		language = COALESCE(NULLIF($3, ''), language),
		geolocation_enabled = COALESCE($4, geolocation_enabled),
		updated_at = NOW()
	WHERE username = $1
	RETURNING username, email, language, geolocation_enabled, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, username, req.Email, req.Language, req.GeolocationEnabled).Scan(
		&u.Username,
		&u.Email,
		&u.Language,
		&u.GeolocationEnabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

// GetProfileStats assembles the numbers shown on the profile page: entry
// count, total characters written, average entry length and current streak.
func (s *UserService) GetProfileStats(ctx context.Context, username string) (*user.ProfileStats, error) {
	query := `
	SELECT COUNT(*), COALESCE(SUM(LENGTH(text)), 0)
	FROM posts
	WHERE author = $1
	`

	stats := &user.ProfileStats{}
	err := s.db.QueryRow(ctx, query, username).Scan(&stats.PostCount, &stats.PostCharacters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post stats: %w", err)
	}

	if stats.PostCount > 0 {
		stats.AveragePostLength = stats.PostCharacters / stats.PostCount
	}

	currentStreak, err := s.stats.GetStreak(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to compute streak: %w", err)
	}
	stats.Streak = currentStreak

	return stats, nil
}
