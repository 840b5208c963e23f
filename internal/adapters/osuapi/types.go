package osuapi

import "time"

// User is the subset of a get_user record the catalog keeps.
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Country  string `json:"country"`
	JoinDate string `json:"join_date"`
}

// BeatmapsQuery selects a get_beatmaps page. A zero Since or an empty
// UserID leaves that parameter out.
type BeatmapsQuery struct {
	UserID string
	Since  time.Time
	Limit  int
	Offset int
}
