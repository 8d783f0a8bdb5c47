package social

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

func TestFollowAndUnfollow(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO user_follows`).
		WithArgs("user-1", "user-2").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService(mock, nil)
	if err := svc.Follow(context.Background(), "user-1", "user-2"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	mock.ExpectExec(`DELETE FROM user_follows`).
		WithArgs("user-1", "user-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := svc.Unfollow(context.Background(), "user-1", "user-2"); err != nil {
		t.Fatalf("unfollow: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFollowSelfRejected(t *testing.T) {
	svc := NewService(nil, nil)
	if err := svc.Follow(context.Background(), "user-1", "user-1"); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
}

// The edge is one row, so a failed insert leaves no half-written pair: the
// follower view and the following view read the same record.
func TestFollowInsertFailureLeavesNoEdge(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO user_follows`).
		WithArgs("user-1", "user-2").
		WillReturnError(errEdge)

	svc := NewService(mock, nil)
	if err := svc.Follow(context.Background(), "user-1", "user-2"); err == nil {
		t.Fatalf("expected insert error")
	}

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", "user-2").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	following, err := svc.IsFollowing(context.Background(), "user-1", "user-2")
	if err != nil || following {
		t.Fatalf("expected no edge after failed follow")
	}
}

func TestFollowersEnriched(t *testing.T) {
	mock := newMock(t)

	followedAt := time.Now()
	mock.ExpectQuery(`FROM user_follows f\s+JOIN users u ON u.id = f.follower_id`).
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "full_name", "avatar_url", "total_likes", "created_at"}).
			AddRow("user-1", "ana", "Ana", "https://avatar", 42, followedAt))

	svc := NewService(mock, nil)
	members, err := svc.Followers(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("followers: %v", err)
	}
	if len(members) != 1 || members[0].TotalLikes != 42 || members[0].Username != "ana" {
		t.Fatalf("unexpected members: %+v", members)
	}
}

func TestFollowingEnriched(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM user_follows f\s+JOIN users u ON u.id = f.following_id`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "full_name", "avatar_url", "total_likes", "created_at"}).
			AddRow("user-2", "bo", "Bo", "", 0, time.Now()))

	svc := NewService(mock, nil)
	members, err := svc.Following(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("following: %v", err)
	}
	if len(members) != 1 || members[0].UserID != "user-2" {
		t.Fatalf("unexpected members: %+v", members)
	}
}

var errEdge = errors.New("edge error")
