package post

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/abasiman/stylofitApp/internal/blob"
	"github.com/abasiman/stylofitApp/internal/db"
	"github.com/abasiman/stylofitApp/internal/shared/geo"
	"github.com/abasiman/stylofitApp/internal/stream"
)

var ErrNotOwner = errors.New("post does not belong to user")

type Service struct {
	db    db.Querier
	hub   *stream.Hub
	blobs blob.Store
}

func NewService(querier db.Querier, hub *stream.Hub, blobs blob.Store) *Service {
	return &Service{db: querier, hub: hub, blobs: blobs}
}

// CreatePost persists a post row; callers go through the upload pipeline, which
// has already moderated the image and pushed it to blob storage.
func (s *Service) CreatePost(ctx context.Context, input Post) (Post, error) {
	input.ID = uuid.NewString()

	tagsJSON, err := json.Marshal(input.Tags)
	if err != nil {
		return Post{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, user_id, author_name, author_avatar, image_url, storage_path, caption, tags)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, input.ID, input.UserID, input.AuthorName, input.AuthorAvatar, input.ImageURL, input.StoragePath, input.Caption, tagsJSON)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Post{}, err
	}

	if s.hub != nil {
		// Optimistic prepend for feed subscribers; the standing feed query
		// catches up on its own.
		s.hub.BroadcastEvent("feed", "post_created", input)
	}
	return input, nil
}

func (s *Service) GetPost(ctx context.Context, id string) (Post, error) {
	row := s.db.QueryRow(ctx, selectPost+` WHERE id=$1`, id)
	return scanPost(row)
}

// Feed returns all posts newest first; ownerID narrows to one user's posts.
// Same-timestamp order is whatever the store returns.
func (s *Service) Feed(ctx context.Context, ownerID string) ([]Post, error) {
	query := selectPost + ` ORDER BY created_at DESC`
	args := []any{}
	if ownerID != "" {
		query = selectPost + ` WHERE user_id=$1 ORDER BY created_at DESC`
		args = append(args, ownerID)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// Nearby returns posts carrying at least one tag within radiusKm of the point.
// Tag coordinates live inside the JSONB column, so the distance check runs here
// rather than in SQL.
func (s *Service) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]Post, error) {
	posts, err := s.Feed(ctx, "")
	if err != nil {
		return nil, err
	}

	var nearby []Post
	for _, p := range posts {
		for _, tag := range p.Tags {
			if geo.HaversineKm(lat, lng, tag.Place.Lat, tag.Place.Lng) <= radiusKm {
				nearby = append(nearby, p)
				break
			}
		}
	}
	return nearby, nil
}

// DeletePost removes the post with its likes and comments in one transaction,
// then best-effort deletes the blob. A failed blob delete leaves an orphaned
// object and is only logged.
func (s *Service) DeletePost(ctx context.Context, postID, userID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ownerID, storagePath string
	row := tx.QueryRow(ctx, `SELECT user_id, storage_path FROM posts WHERE id=$1`, postID)
	if err := row.Scan(&ownerID, &storagePath); err != nil {
		return err
	}
	if ownerID != userID {
		return ErrNotOwner
	}

	if _, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id=$1`, postID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM post_comments WHERE post_id=$1`, postID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM posts WHERE id=$1`, postID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if s.blobs != nil && storagePath != "" {
		if err := s.blobs.Delete(ctx, storagePath); err != nil {
			log.Printf("blob delete for post %s failed, object orphaned: %v", postID, err)
		}
	}

	if s.hub != nil {
		s.hub.BroadcastEvent("feed", "post_deleted", map[string]string{"id": postID})
	}
	return nil
}

const selectPost = `
	SELECT id, user_id, author_name, author_avatar, image_url, storage_path,
	       caption, tags, likes_count, comments_count, created_at
	FROM posts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var p Post
	var tagsJSON []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.AuthorName, &p.AuthorAvatar, &p.ImageURL, &p.StoragePath,
		&p.Caption, &tagsJSON, &p.LikesCount, &p.CommentsCount, &p.CreatedAt); err != nil {
		return Post{}, err
	}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
			return Post{}, err
		}
	}
	return p, nil
}
