package engagement

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abasiman/stylofitApp/internal/db"
	"github.com/abasiman/stylofitApp/internal/stream"
)

// Two toggles inside this window are a double-tap, which always means "like":
// the second invocation is absorbed instead of cancelling the first.
const debounceWindow = 300 * time.Millisecond

var (
	ErrMissingUser  = errors.New("user required")
	ErrEmptyComment = errors.New("comment text required")
)

type Service struct {
	db  db.Querier
	hub *stream.Hub
	now func() time.Time

	mu      sync.Mutex
	toggles map[string]toggleRecord
}

type toggleRecord struct {
	at    time.Time
	state LikeState
}

func NewService(querier db.Querier, hub *stream.Hub) *Service {
	return &Service{
		db:      querier,
		hub:     hub,
		now:     time.Now,
		toggles: map[string]toggleRecord{},
	}
}

// ToggleLike flips the (post, user) like membership and its counter in one
// transaction, so the pair can never drift apart.
func (s *Service) ToggleLike(ctx context.Context, postID, userID string) (LikeState, error) {
	if userID == "" {
		return LikeState{}, ErrMissingUser
	}

	if state, absorbed := s.absorbToggle(postID, userID); absorbed {
		return state, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return LikeState{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var liked bool
	row := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM post_likes WHERE post_id=$1 AND user_id=$2)
	`, postID, userID)
	if err := row.Scan(&liked); err != nil {
		return LikeState{}, err
	}

	var state LikeState
	if liked {
		if _, err := tx.Exec(ctx, `
			DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2
		`, postID, userID); err != nil {
			return LikeState{}, err
		}
		row = tx.QueryRow(ctx, `
			UPDATE posts SET likes_count = GREATEST(likes_count - 1, 0)
			WHERE id=$1
			RETURNING likes_count
		`, postID)
	} else {
		if _, err := tx.Exec(ctx, `
			INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1,$2,now())
		`, postID, userID); err != nil {
			return LikeState{}, err
		}
		row = tx.QueryRow(ctx, `
			UPDATE posts SET likes_count = likes_count + 1
			WHERE id=$1
			RETURNING likes_count
		`, postID)
	}
	if err := row.Scan(&state.LikesCount); err != nil {
		return LikeState{}, err
	}
	state.Liked = !liked

	if err := tx.Commit(ctx); err != nil {
		return LikeState{}, err
	}

	s.recordToggle(postID, userID, state)

	if s.hub != nil {
		s.hub.BroadcastEvent("post:"+postID, "like_count", state)
	}
	return state, nil
}

// LikeState reads the "liked by me" membership and the counter in one query.
func (s *Service) LikeState(ctx context.Context, postID, userID string) (LikeState, error) {
	row := s.db.QueryRow(ctx, `
		SELECT likes_count,
		       EXISTS (SELECT 1 FROM post_likes WHERE post_id=$1 AND user_id=$2)
		FROM posts WHERE id=$1
	`, postID, userID)

	var state LikeState
	if err := row.Scan(&state.LikesCount, &state.Liked); err != nil {
		return LikeState{}, err
	}
	return state, nil
}

// AddComment rejects blank text before touching the store, then appends the
// comment and bumps the counter in one transaction.
func (s *Service) AddComment(ctx context.Context, postID, userID, authorName, body string) (Comment, error) {
	if userID == "" {
		return Comment{}, ErrMissingUser
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, ErrEmptyComment
	}

	comment := Comment{
		ID:         uuid.NewString(),
		PostID:     postID,
		UserID:     userID,
		AuthorName: authorName,
		Body:       body,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Comment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO post_comments (id, post_id, user_id, author_name, body)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, comment.ID, comment.PostID, comment.UserID, comment.AuthorName, comment.Body)
	if err := row.Scan(&comment.CreatedAt); err != nil {
		return Comment{}, err
	}

	var commentsCount int
	row = tx.QueryRow(ctx, `
		UPDATE posts SET comments_count = comments_count + 1
		WHERE id=$1
		RETURNING comments_count
	`, postID)
	if err := row.Scan(&commentsCount); err != nil {
		return Comment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Comment{}, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent("post:"+postID, "comment_added", commentEvent{
			Comment:       comment,
			CommentsCount: commentsCount,
		})
	}
	return comment, nil
}

type commentEvent struct {
	Comment       Comment `json:"comment"`
	CommentsCount int     `json:"comments_count"`
}

// Comments returns newest first. Equal timestamps keep store order.
func (s *Service) Comments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, user_id, author_name, body, created_at
		FROM post_comments
		WHERE post_id=$1
		ORDER BY created_at DESC
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, nil
}

func (s *Service) absorbToggle(postID, userID string) (LikeState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := postID + "|" + userID
	rec, ok := s.toggles[key]
	if ok && s.now().Sub(rec.at) < debounceWindow {
		return rec.state, true
	}
	return LikeState{}, false
}

func (s *Service) recordToggle(postID, userID string, state LikeState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, rec := range s.toggles {
		if now.Sub(rec.at) >= debounceWindow {
			delete(s.toggles, key)
		}
	}
	s.toggles[postID+"|"+userID] = toggleRecord{at: now, state: state}
}
