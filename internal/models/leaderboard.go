package models

type LeaderboardItem struct {
	Wallet   string  `json:"wallet"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank,omitempty"`
}

type LeaderboardResponse struct {
	Leaderboard []*LeaderboardItem `json:"leaderboard"`
	Me          *LeaderboardItem   `json:"me"`
}
