package post

import "time"

// Post is one published outfit: an image plus caption, place tags anchored on
// the image, and denormalized engagement counters.
type Post struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	AuthorName    string    `json:"author_name"`
	AuthorAvatar  string    `json:"author_avatar"`
	ImageURL      string    `json:"image_url"`
	StoragePath   string    `json:"storage_path"`
	Caption       string    `json:"caption"`
	Tags          []Tag     `json:"tags"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Tag anchors a place to a normalized position on the post image.
type Tag struct {
	Place    Place    `json:"place"`
	Position Position `json:"position"`
}

type Place struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Position is a percentage coordinate within the image, 0-100 on both axes.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
