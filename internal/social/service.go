package social

import (
	"context"
	"errors"

	"github.com/abasiman/stylofitApp/internal/db"
	"github.com/abasiman/stylofitApp/internal/stream"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

type Service struct {
	db  db.Querier
	hub *stream.Hub
}

func NewService(querier db.Querier, hub *stream.Hub) *Service {
	return &Service{db: querier, hub: hub}
}

// Follow is idempotent: an existing edge is left untouched.
func (s *Service) Follow(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return ErrSelfFollow
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_follows (follower_id, following_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, followerID, followingID)
	if err != nil {
		return err
	}

	s.broadcastFollowerCount(ctx, followingID)
	return nil
}

func (s *Service) Unfollow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM user_follows WHERE follower_id=$1 AND following_id=$2
	`, followerID, followingID)
	if err != nil {
		return err
	}

	s.broadcastFollowerCount(ctx, followingID)
	return nil
}

func (s *Service) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var following bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_follows WHERE follower_id=$1 AND following_id=$2)
	`, followerID, followingID).Scan(&following)
	return following, err
}

// Followers lists users following userID, enriched with profile and total
// likes. The aggregate is a single SUM over the denormalized per-post
// counters, not a per-member fan-out read.
func (s *Service) Followers(ctx context.Context, userID string) ([]Member, error) {
	return s.members(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url,
		       COALESCE((SELECT SUM(p.likes_count) FROM posts p WHERE p.user_id = u.id), 0),
		       f.created_at
		FROM user_follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC
	`, userID)
}

// Following lists users userID follows, same enrichment as Followers.
func (s *Service) Following(ctx context.Context, userID string) ([]Member, error) {
	return s.members(ctx, `
		SELECT u.id, u.username, u.full_name, u.avatar_url,
		       COALESCE((SELECT SUM(p.likes_count) FROM posts p WHERE p.user_id = u.id), 0),
		       f.created_at
		FROM user_follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`, userID)
}

func (s *Service) members(ctx context.Context, query, userID string) ([]Member, error) {
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Username, &m.FullName, &m.AvatarURL, &m.TotalLikes, &m.FollowedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (s *Service) broadcastFollowerCount(ctx context.Context, userID string) {
	if s.hub == nil {
		return
	}

	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_follows WHERE following_id=$1
	`, userID).Scan(&count)
	if err != nil {
		return
	}
	s.hub.BroadcastEvent("user:"+userID, "follower_count", map[string]int{"follower_count": count})
}
