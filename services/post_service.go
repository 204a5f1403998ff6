package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortdiaryAPI/internal/history"
	"shortdiaryAPI/internal/leaderboard"
	"shortdiaryAPI/internal/post"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrDuplicateDate means the user already has an entry for that day.
	ErrDuplicateDate = errors.New("post for this date already exists")
	// ErrNotEditable means the post's date has fallen out of the edit window.
	ErrNotEditable = errors.New("post is no longer editable")
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidDate  = errors.New("invalid post date")
	ErrTextTooLong  = errors.New("post text exceeds maximum length")
)

const pgUniqueViolation = "23505"

type PostService struct {
	db         *pgxpool.Pool
	editWindow int
	stats      *StatsService
}

func NewPostService(db *pgxpool.Pool, editWindowDays int) *PostService {
	return &PostService{db: db, editWindow: editWindowDays}
}

// SetStatsService wires the stats engine so post creation can trigger its
// cache invalidation hook. Injected from main to avoid a construction cycle.
func (s *PostService) SetStatsService(stats *StatsService) {
	s.stats = stats
}

const postColumns = `id, author, date, text, mood, location_lat, location_lon, location_verbose, public, part_of, created_at, last_changed_at, sent`

func scanPost(row pgx.Row) (*post.Post, error) {
	p := &post.Post{}
	err := row.Scan(
		&p.ID,
		&p.Author,
		&p.Date,
		&p.Text,
		&p.Mood,
		&p.LocationLat,
		&p.LocationLon,
		&p.LocationVerbose,
		&p.Public,
		&p.PartOf,
		&p.CreatedAt,
		&p.LastChangedAt,
		&p.Sent,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostService) CreatePost(ctx context.Context, username string, req *post.CreatePostRequest) (*post.Post, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if date.After(today) || today.Sub(date) > 24*time.Hour {
		// Entries can only be written for today or yesterday.
		return nil, ErrInvalidDate
	}

	if len(req.Text) > post.MaxTextLength {
		return nil, ErrTextTooLong
	}

	query := `
	INSERT INTO posts (id, author, date, text, mood, location_lat, location_lon, location_verbose, public, part_of, created_at, last_changed_at, sent)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW(), false)
	RETURNING ` + postColumns

	created, err := scanPost(s.db.QueryRow(
		ctx,
		query,
		uuid.New(),
		username,
		date,
		req.Text,
		req.Mood,
		req.LocationLat,
		req.LocationLon,
		req.LocationVerbose,
		req.Public,
		req.PartOf,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateDate
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	// Enqueued before we return; the streak cache must never outlive a new
	// post (see StatsService.OnPostCreated).
	if s.stats != nil {
		s.stats.OnPostCreated(username)
	}

	return created, nil
}

func (s *PostService) GetPost(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	p, err := scanPost(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return p, nil
}

func (s *PostService) UpdatePost(ctx context.Context, username string, id uuid.UUID, req *post.UpdatePostRequest) (*post.Post, error) {
	existing, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Author != username {
		return nil, ErrPostNotFound
	}
	if !existing.Editable(s.editWindow, time.Now().UTC()) {
		return nil, ErrNotEditable
	}

	if len(req.Text) > post.MaxTextLength {
		return nil, ErrTextTooLong
	}

	query := `
	UPDATE posts
	SET text = $2, mood = $3, public = COALESCE($4, public), last_changed_at = NOW()
	WHERE id = $1
	RETURNING ` + postColumns

	updated, err := scanPost(s.db.QueryRow(ctx, query, id, req.Text, req.Mood, req.Public))
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return updated, nil
}

func (s *PostService) DeletePost(ctx context.Context, username string, id uuid.UUID) error {
	existing, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if existing.Author != username {
		return ErrPostNotFound
	}
	if !existing.Editable(s.editWindow, time.Now().UTC()) {
		return ErrNotEditable
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

// ListRecentPosts returns the user's entries from the last 7 days, newest
// first, for the index view.
func (s *PostService) ListRecentPosts(ctx context.Context, username string) ([]*post.Post, error) {
	query := `
	SELECT ` + postColumns + `
	FROM posts
	WHERE author = $1 AND date >= CURRENT_DATE - INTERVAL '6 days'
	ORDER BY date DESC, created_at DESC
	`

	rows, err := s.db.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

// RandomPublicPost returns one random public entry for the front page, or nil
// when no public entries exist.
func (s *PostService) RandomPublicPost(ctx context.Context) (*post.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE public = true ORDER BY RANDOM() LIMIT 1`

	p, err := scanPost(s.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get random public post: %w", err)
	}

	return p, nil
}

func (s *PostService) DatesForUser(ctx context.Context, username string) ([]time.Time, error) {
	query := `SELECT date FROM posts WHERE author = $1 ORDER BY date ASC`

	rows, err := s.db.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan post date: %w", err)
		}
		dates = append(dates, d)
	}

	return dates, rows.Err()
}

func (s *PostService) CountForUser(ctx context.Context, username string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE author = $1`, username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (s *PostService) Usernames(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT username FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch usernames: %w", err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		usernames = append(usernames, u)
	}

	return usernames, rows.Err()
}

// PostCounts returns the total entry count per user, including users who have
// never posted.
func (s *PostService) PostCounts(ctx context.Context) ([]*leaderboard.Entry, error) {
	query := `
	SELECT u.username, COUNT(p.id) AS post_count
	FROM users u
	LEFT JOIN posts p ON p.author = u.username
	GROUP BY u.username
	ORDER BY u.username
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post counts: %w", err)
	}
	defer rows.Close()

	var counts []*leaderboard.Entry
	for rows.Next() {
		entry := &leaderboard.Entry{}
		if err := rows.Scan(&entry.Username, &entry.Value); err != nil {
			return nil, fmt.Errorf("failed to scan post count: %w", err)
		}
		counts = append(counts, entry)
	}

	return counts, rows.Err()
}

// YearHistory builds the activity grid for one calendar year: one slot per
// day, colored by entry length.
func (s *PostService) YearHistory(ctx context.Context, username string, year int) (*history.YearResponse, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	daysInYear := int(end.Sub(start).Hours() / 24)

	resp := &history.YearResponse{
		Year: year,
		Days: make([]*history.Day, daysInYear),
	}
	for i := range resp.Days {
		resp.Days[i] = &history.Day{Date: start.AddDate(0, 0, i)}
	}

	query := `
	SELECT id, date, LENGTH(text)
	FROM posts
	WHERE author = $1 AND date >= $2 AND date < $3
	`

	rows, err := s.db.Query(ctx, query, username, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch year history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var date time.Time
		var chars int
		if err := rows.Scan(&id, &date, &chars); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		day := resp.Days[date.YearDay()-1]
		day.PostID = &id
		day.Chars = chars
		day.Color = history.ActivityColor(chars)
	}

	return resp, rows.Err()
}

// UnsentAnniversaryPosts returns posts written exactly one year before today
// whose reminder mail has not gone out yet.
func (s *PostService) UnsentAnniversaryPosts(ctx context.Context, today time.Time) ([]*post.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE date = $1 AND sent = false`

	rows, err := s.db.Query(ctx, query, today.AddDate(-1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch anniversary posts: %w", err)
	}
	defer rows.Close()

	var posts []*post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

func (s *PostService) MarkSent(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `UPDATE posts SET sent = true WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark post as sent: %w", err)
	}
	return nil
}
