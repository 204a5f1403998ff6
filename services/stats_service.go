package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"shortdiaryAPI/internal/cache"
	"shortdiaryAPI/internal/leaderboard"
	"shortdiaryAPI/internal/streak"
	"shortdiaryAPI/middleware"
)

// PostStore is the query surface the stats engine needs from the post
// service. Kept as an interface so tests can run against an in-memory store.
type PostStore interface {
	DatesForUser(ctx context.Context, username string) ([]time.Time, error)
	CountForUser(ctx context.Context, username string) (int, error)
	Usernames(ctx context.Context) ([]string, error)
	PostCounts(ctx context.Context) ([]*leaderboard.Entry, error)
}

const leaderboardSize = 10

// StatsService computes streaks and leaderboards on top of the post store,
// memoizing streaks in an injected cache. Invalidations triggered by new
// posts are applied by a background worker; OnPostCreated only enqueues.
type StatsService struct {
	store PostStore
	cache cache.StreakCache

	invalidations chan string
	stopChan      chan struct{}
	wg            sync.WaitGroup

	// now is swapped out in tests to pin the reference day.
	now func() time.Time
}

func NewStatsService(store PostStore, streakCache cache.StreakCache) *StatsService {
	s := &StatsService{
		store:         store,
		cache:         streakCache,
		invalidations: make(chan string, 100),
		stopChan:      make(chan struct{}),
		now:           time.Now,
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

// Stop shuts down the invalidation worker, applying anything still queued.
func (s *StatsService) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *StatsService) worker() {
	defer s.wg.Done()
	for {
		select {
		case username := <-s.invalidations:
			s.invalidate(username)
		case <-s.stopChan:
			for {
				select {
				case username := <-s.invalidations:
					s.invalidate(username)
				default:
					return
				}
			}
		}
	}
}

func (s *StatsService) invalidate(username string) {
	if err := s.cache.Invalidate(username); err != nil {
		log.Printf("Failed to invalidate streak cache for %s: %v", username, err)
		return
	}
	middleware.ObserveStreakCacheInvalidation()
}

// OnPostCreated is the write-side hook the post creation path calls
// synchronously. The invalidation is enqueued before this returns but may be
// applied slightly later; if the queue is full it is applied inline so the
// cache can never be left stale.
func (s *StatsService) OnPostCreated(username string) {
	select {
	case s.invalidations <- username:
	default:
		s.invalidate(username)
	}
}

// GetStreak returns the user's current streak, from cache when possible. The
// cache is an optimization only: any cache failure falls back to direct
// recomputation.
func (s *StatsService) GetStreak(ctx context.Context, username string) (int, error) {
	cached, ok, err := s.cache.Get(username)
	if err != nil {
		log.Printf("Streak cache read failed for %s, recomputing: %v", username, err)
	} else if ok {
		middleware.ObserveStreakCacheHit()
		return cached, nil
	} else {
		middleware.ObserveStreakCacheMiss()
	}

	dates, err := s.store.DatesForUser(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch post dates: %w", err)
	}

	current := streak.Calculate(dates, s.now().UTC())

	// Unbounded lifetime: the value only changes when the user writes a new
	// post, which invalidates it through OnPostCreated.
	if err := s.cache.Set(username, current); err != nil {
		log.Printf("Streak cache write failed for %s: %v", username, err)
	}

	return current, nil
}

// GetLeaderboards returns the top users by current streak and by total post
// count. Each board is sorted descending, truncated to the top 10 and only
// then filtered to values above 1, so either list may hold fewer than 10
// entries. Ties keep a stable but unspecified order.
func (s *StatsService) GetLeaderboards(ctx context.Context) (*leaderboard.Leaderboards, error) {
	usernames, err := s.store.Usernames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	streakEntries := make([]*leaderboard.Entry, 0, len(usernames))
	for _, username := range usernames {
		value, err := s.GetStreak(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to compute streak for %s: %w", username, err)
		}
		streakEntries = append(streakEntries, &leaderboard.Entry{Username: username, Value: value})
	}

	countEntries, err := s.store.PostCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post counts: %w", err)
	}

	return &leaderboard.Leaderboards{
		StreakLeaders: topEntries(streakEntries),
		PostLeaders:   topEntries(countEntries),
	}, nil
}

// topEntries sorts descending, truncates to the leaderboard size and drops
// entries with a value of 1 or less. The filter runs after truncation on
// purpose: a qualifying user ranked 11th is not promoted into the board.
func topEntries(entries []*leaderboard.Entry) []*leaderboard.Entry {
	sorted := make([]*leaderboard.Entry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	if len(sorted) > leaderboardSize {
		sorted = sorted[:leaderboardSize]
	}

	top := make([]*leaderboard.Entry, 0, len(sorted))
	for _, entry := range sorted {
		if entry.Value > 1 {
			top = append(top, entry)
		}
	}

	return top
}
