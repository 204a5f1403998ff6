package leaderboard

// Entry is one row of a leaderboard: a user and their metric value (current
// streak or total post count, depending on the board).
type Entry struct {
	Username string `json:"username"`
	Value    int    `json:"value"`
}

type Leaderboards struct {
	StreakLeaders []*Entry `json:"streak_leaders"`
	PostLeaders   []*Entry `json:"post_leaders"`
}
