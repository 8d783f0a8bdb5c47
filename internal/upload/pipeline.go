package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abasiman/stylofitApp/internal/blob"
	"github.com/abasiman/stylofitApp/internal/moderation"
	"github.com/abasiman/stylofitApp/internal/post"
	"github.com/abasiman/stylofitApp/internal/stream"
)

// State tags the phases of one upload. Failures discard the pending record,
// which is the Idle-equivalent: the client starts over.
type State string

const (
	StateChecking             State = "checking"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateUploading            State = "uploading"
	StatePersisting           State = "persisting"
	StateDone                 State = "done"
	StateBlocked              State = "blocked"
)

var (
	ErrNoImage       = errors.New("image required")
	ErrNoTags        = errors.New("at least one tag required")
	ErrMissingUser   = errors.New("user required")
	ErrUnknownUpload = errors.New("unknown upload")
	// ErrBlocked is the moderation rejection: a deliberate terminal outcome,
	// not a remote failure.
	ErrBlocked = errors.New("image contains adult, violent, or racy content and cannot be uploaded")
)

type BeginRequest struct {
	UserID       string
	AuthorName   string
	AuthorAvatar string
	Caption      string
	Tags         []post.Tag
	Image        []byte
}

type BeginResult struct {
	UploadID string             `json:"upload_id"`
	State    State              `json:"state"`
	Verdict  moderation.Verdict `json:"verdict"`
}

type pendingUpload struct {
	id      string
	req     BeginRequest
	verdict moderation.Verdict
	state   State
}

// Pipeline drives image acquisition -> safety check -> confirmation -> blob
// upload -> post creation. Pending uploads live in memory between Begin and
// Confirm; a lost record simply means re-selecting the image.
type Pipeline struct {
	gate  moderation.Gate
	blobs blob.Store
	posts *post.Service
	hub   *stream.Hub

	mu      sync.Mutex
	pending map[string]*pendingUpload

	pathFn func() string
}

func NewPipeline(gate moderation.Gate, blobs blob.Store, posts *post.Service, hub *stream.Hub) *Pipeline {
	return &Pipeline{
		gate:    gate,
		blobs:   blobs,
		posts:   posts,
		hub:     hub,
		pending: map[string]*pendingUpload{},
		pathFn:  defaultPath,
	}
}

// Collision probability on timestamp+uuid is treated as negligible.
func defaultPath() string {
	return fmt.Sprintf("outfits/%d-%s.jpg", time.Now().UnixNano(), uuid.NewString())
}

// Begin validates the submission, runs the safety check once (no retry, no
// cancellation), and parks the upload awaiting explicit confirmation. A gate
// failure surfaces as an error with nothing retained.
func (p *Pipeline) Begin(ctx context.Context, req BeginRequest) (BeginResult, error) {
	if req.UserID == "" {
		return BeginResult{}, ErrMissingUser
	}
	if len(req.Image) == 0 {
		return BeginResult{}, ErrNoImage
	}
	if len(req.Tags) == 0 {
		return BeginResult{}, ErrNoTags
	}

	var verdict moderation.Verdict
	if p.gate != nil {
		var err error
		verdict, err = p.gate.Inspect(ctx, req.Image)
		if err != nil {
			return BeginResult{}, fmt.Errorf("safety check failed: %w", err)
		}
	}

	up := &pendingUpload{
		id:      uuid.NewString(),
		req:     req,
		verdict: verdict,
		state:   StateAwaitingConfirmation,
	}

	p.mu.Lock()
	p.pending[up.id] = up
	p.mu.Unlock()

	return BeginResult{UploadID: up.id, State: up.state, Verdict: verdict}, nil
}

// Confirm re-evaluates the stored verdict before anything remote happens. The
// check already ran in Begin, but confirmation could otherwise be driven by
// stale or tampered state, so a blocked verdict is refused again here.
func (p *Pipeline) Confirm(ctx context.Context, uploadID string) (post.Post, error) {
	p.mu.Lock()
	up, ok := p.pending[uploadID]
	if ok {
		delete(p.pending, uploadID)
	}
	p.mu.Unlock()

	if !ok || up.state != StateAwaitingConfirmation {
		return post.Post{}, ErrUnknownUpload
	}

	if up.verdict.Blocked() {
		up.state = StateBlocked
		p.broadcastState(uploadID, StateBlocked)
		return post.Post{}, ErrBlocked
	}

	up.state = StateUploading
	p.broadcastState(uploadID, StateUploading)

	path := p.pathFn()
	size := int64(len(up.req.Image))
	url, err := p.blobs.Upload(ctx, path, bytes.NewReader(up.req.Image), size, p.progressFunc(uploadID))
	if err != nil {
		return post.Post{}, fmt.Errorf("blob upload failed: %w", err)
	}

	up.state = StatePersisting
	p.broadcastState(uploadID, StatePersisting)

	created, err := p.posts.CreatePost(ctx, post.Post{
		UserID:       up.req.UserID,
		AuthorName:   up.req.AuthorName,
		AuthorAvatar: up.req.AuthorAvatar,
		ImageURL:     url,
		StoragePath:  path,
		Caption:      up.req.Caption,
		Tags:         up.req.Tags,
	})
	if err != nil {
		// The blob stays where it is: the orphan is deliberate and the error
		// names it so callers can observe the condition.
		return post.Post{}, fmt.Errorf("post create failed, blob %s orphaned: %w", path, err)
	}

	up.state = StateDone
	p.broadcastState(uploadID, StateDone)
	return created, nil
}

// Cancel discards the pending record. It never aborts an in-flight remote
// call; a Confirm already running completes or fails on its own.
func (p *Pipeline) Cancel(uploadID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.pending[uploadID]; !ok {
		return ErrUnknownUpload
	}
	delete(p.pending, uploadID)
	return nil
}

// progressFunc reports whole-percent progress, never decreasing, on the
// upload's topic.
func (p *Pipeline) progressFunc(uploadID string) blob.ProgressFunc {
	if p.hub == nil {
		return nil
	}

	lastPct := int64(-1)
	return func(transferred, total int64) {
		if total <= 0 {
			return
		}
		pct := transferred * 100 / total
		if pct <= lastPct {
			return
		}
		lastPct = pct
		p.hub.BroadcastEvent("upload:"+uploadID, "progress", map[string]int64{
			"transferred": transferred,
			"total":       total,
			"percent":     pct,
		})
	}
}

func (p *Pipeline) broadcastState(uploadID string, state State) {
	if p.hub == nil {
		return
	}
	p.hub.BroadcastEvent("upload:"+uploadID, "state", map[string]State{"state": state})
}
