package engagement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func expectToggle(mock pgxmock.PgxPoolIface, liked bool, resultingCount int) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("post-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(liked))
	if liked {
		mock.ExpectExec(`DELETE FROM post_likes`).
			WithArgs("post-1", "user-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectQuery(`UPDATE posts SET likes_count = GREATEST`).
			WithArgs("post-1").
			WillReturnRows(pgxmock.NewRows([]string{"likes_count"}).AddRow(resultingCount))
	} else {
		mock.ExpectExec(`INSERT INTO post_likes`).
			WithArgs("post-1", "user-1").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(`UPDATE posts SET likes_count = likes_count \+ 1`).
			WithArgs("post-1").
			WillReturnRows(pgxmock.NewRows([]string{"likes_count"}).AddRow(resultingCount))
	}
	mock.ExpectCommit()
}

func TestToggleLikeFromCleanState(t *testing.T) {
	mock := newMock(t)
	expectToggle(mock, false, 1)

	svc := NewService(mock, nil)
	state, err := svc.ToggleLike(context.Background(), "post-1", "user-1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !state.Liked || state.LikesCount != 1 {
		t.Fatalf("expected liked with count 1, got %+v", state)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Odd numbers of spaced toggles land on liked with the counter up exactly one;
// even numbers return to the clean state.
func TestToggleLikeOddEvenSequences(t *testing.T) {
	mock := newMock(t)

	current := time.Now()
	svc := NewService(mock, nil)
	svc.now = func() time.Time { return current }

	sequence := []struct {
		liked bool
		count int
	}{
		{false, 1},
		{true, 0},
		{false, 1},
		{true, 0},
	}
	for i, step := range sequence {
		expectToggle(mock, step.liked, step.count)

		state, err := svc.ToggleLike(context.Background(), "post-1", "user-1")
		if err != nil {
			t.Fatalf("toggle %d: %v", i+1, err)
		}
		wantLiked := !step.liked
		if state.Liked != wantLiked || state.LikesCount != step.count {
			t.Fatalf("toggle %d: got %+v", i+1, state)
		}

		current = current.Add(time.Second)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Two toggles 100ms apart are a double-tap: the net effect is liked, not a
// cancel-and-reapply. At 500ms apart both toggles run.
func TestToggleLikeDebounce(t *testing.T) {
	mock := newMock(t)

	current := time.Now()
	svc := NewService(mock, nil)
	svc.now = func() time.Time { return current }

	expectToggle(mock, false, 1)
	first, err := svc.ToggleLike(context.Background(), "post-1", "user-1")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}

	current = current.Add(100 * time.Millisecond)
	second, err := svc.ToggleLike(context.Background(), "post-1", "user-1")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second != first || !second.Liked {
		t.Fatalf("expected second toggle absorbed, got %+v", second)
	}

	current = current.Add(500 * time.Millisecond)
	expectToggle(mock, true, 0)
	third, err := svc.ToggleLike(context.Background(), "post-1", "user-1")
	if err != nil {
		t.Fatalf("third toggle: %v", err)
	}
	if third.Liked || third.LikesCount != 0 {
		t.Fatalf("expected unliked after spaced toggle, got %+v", third)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestToggleLikeMissingUser(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.ToggleLike(context.Background(), "post-1", ""); !errors.Is(err, ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}
}

func TestToggleLikeRollsBackOnCounterError(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("post-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO post_likes`).
		WithArgs("post-1", "user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`UPDATE posts SET likes_count = likes_count \+ 1`).
		WithArgs("post-1").
		WillReturnError(errCounter)
	mock.ExpectRollback()

	svc := NewService(mock, nil)
	if _, err := svc.ToggleLike(context.Background(), "post-1", "user-1"); err == nil {
		t.Fatalf("expected counter error")
	}

	// The membership insert and the counter update share the transaction, so
	// the failed pair leaves no drift behind.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLikeState(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT likes_count`).
		WithArgs("post-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"likes_count", "liked"}).AddRow(7, true))

	svc := NewService(mock, nil)
	state, err := svc.LikeState(context.Background(), "post-1", "user-1")
	if err != nil {
		t.Fatalf("like state: %v", err)
	}
	if !state.Liked || state.LikesCount != 7 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestAddComment(t *testing.T) {
	mock := newMock(t)

	createdAt := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO post_comments`).
		WithArgs(pgxmock.AnyArg(), "post-1", "user-1", "Ana", "nice fit").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))
	mock.ExpectQuery(`UPDATE posts SET comments_count`).
		WithArgs("post-1").
		WillReturnRows(pgxmock.NewRows([]string{"comments_count"}).AddRow(1))
	mock.ExpectCommit()

	svc := NewService(mock, nil)
	comment, err := svc.AddComment(context.Background(), "post-1", "user-1", "Ana", "  nice fit  ")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if comment.Body != "nice fit" {
		t.Fatalf("expected trimmed body, got %q", comment.Body)
	}
	if comment.ID == "" || comment.CreatedAt.IsZero() {
		t.Fatalf("expected populated comment")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddCommentBlankRejected(t *testing.T) {
	mock := newMock(t)

	svc := NewService(mock, nil)
	if _, err := svc.AddComment(context.Background(), "post-1", "user-1", "Ana", "   "); !errors.Is(err, ErrEmptyComment) {
		t.Fatalf("expected ErrEmptyComment, got %v", err)
	}
	if _, err := svc.AddComment(context.Background(), "post-1", "", "Ana", "hello"); !errors.Is(err, ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}

	// Neither rejection may touch the store.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected store access: %v", err)
	}
}

func TestCommentsNewestFirst(t *testing.T) {
	mock := newMock(t)

	t1 := time.Now().Add(-2 * time.Minute)
	t2 := time.Now().Add(-time.Minute)
	t3 := time.Now()
	mock.ExpectQuery(`SELECT id, post_id, user_id, author_name, body, created_at`).
		WithArgs("post-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "post_id", "user_id", "author_name", "body", "created_at"}).
			AddRow("c3", "post-1", "u3", "C", "third", t3).
			AddRow("c2", "post-1", "u2", "B", "second", t2).
			AddRow("c1", "post-1", "u1", "A", "first", t1))

	svc := NewService(mock, nil)
	comments, err := svc.Comments(context.Background(), "post-1")
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments")
	}
	for i := 1; i < len(comments); i++ {
		if comments[i].CreatedAt.After(comments[i-1].CreatedAt) {
			t.Fatalf("comments not in descending order")
		}
	}
}

var errCounter = errors.New("counter error")
