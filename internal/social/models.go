package social

import "time"

// Follow is the single logical edge: follower follows following. Both the
// "followers of X" and "following of Y" views read this one record, so the
// edge exists in both directions or in neither.
type Follow struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member is one entry of an enriched follower/following list: the edge joined
// to the member's current profile and their total likes across all posts.
type Member struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	AvatarURL  string    `json:"avatar_url"`
	TotalLikes int       `json:"total_likes"`
	FollowedAt time.Time `json:"followed_at"`
}
