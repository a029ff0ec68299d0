package socialservice

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	socialdb "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/observability"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

func newTestService(repo socialdb.Repository, players PlayerDirectory) *SocialService {
	return NewSocialService(
		repo,
		players,
		slog.Default(),
		observability.NewNoopOperationMetrics(),
		nil,
		nil,
	)
}

func ptrString(s string) *string { return &s }

// testPlayer builds a registered player row for the fake directory.
func testPlayer(id int64, externalID, username string) *playerdb.Player {
	return &playerdb.Player{
		ID:         id,
		ExternalID: externalID,
		Username:   ptrString(username),
	}
}

func TestSendFriendRequestValidation(t *testing.T) {
	caller := testPlayer(1, "auth0|caller", "caller")
	players := NewFakePlayerDirectory(caller)

	t.Run("empty ref", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		svc := newTestService(repo, players)

		_, err := svc.SendFriendRequest(context.Background(), caller.ID, "   ")

		var invalid types.ValidationError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Friend reference is required", invalid.Message)
		assert.Empty(t, repo.Trace())
	})

	t.Run("unknown player", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		svc := newTestService(repo, players)

		_, err := svc.SendFriendRequest(context.Background(), caller.ID, "nobody@example.com")

		var notFound types.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Player not found", notFound.Message)
	})

	t.Run("self reference", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		svc := newTestService(repo, players)

		_, err := svc.SendFriendRequest(context.Background(), caller.ID, "auth0|caller")

		var invalid types.ValidationError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Cannot add yourself", invalid.Message)
	})
}

func TestSendFriendRequest(t *testing.T) {
	caller := testPlayer(1, "auth0|caller", "caller")
	target := testPlayer(2, "auth0|target", "target")
	players := NewFakePlayerDirectory(caller, target)

	t.Run("creates pending request", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		svc := newTestService(repo, players)

		outcome, err := svc.SendFriendRequest(context.Background(), caller.ID, "target")

		assert.NoError(t, err)
		assert.False(t, outcome.Accepted)
		if assert.NotNil(t, outcome.Request) {
			assert.Equal(t, caller.ID, outcome.Request.RequesterID)
			assert.Equal(t, target.ID, outcome.Request.RecipientID)
		}
		assert.Contains(t, repo.Trace(), "CreateRequest")
	})

	t.Run("already friends is a no-op", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		repo.AreFriendsFunc = func(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error) {
			return true, nil
		}
		svc := newTestService(repo, players)

		outcome, err := svc.SendFriendRequest(context.Background(), caller.ID, "target")

		assert.NoError(t, err)
		assert.True(t, outcome.Accepted)
		assert.Nil(t, outcome.Request)
		assert.NotContains(t, repo.Trace(), "CreateRequest")
		assert.NotContains(t, repo.Trace(), "CreateFriendship")
	})

	t.Run("reciprocal pending auto-accepts", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		repo.GetPendingRequestFunc = func(ctx context.Context, db bun.IDB, requesterID, recipientID int64) (*socialdb.FriendRequest, error) {
			if requesterID == target.ID && recipientID == caller.ID {
				return &socialdb.FriendRequest{ID: 7, RequesterID: target.ID, RecipientID: caller.ID}, nil
			}
			return nil, socialdb.ErrNotFound
		}
		svc := newTestService(repo, players)

		outcome, err := svc.SendFriendRequest(context.Background(), caller.ID, "target")

		assert.NoError(t, err)
		assert.True(t, outcome.Accepted)
		assert.Contains(t, repo.Trace(), "DeleteRequest")
		assert.Contains(t, repo.Trace(), "CreateFriendship")
		assert.NotContains(t, repo.Trace(), "CreateRequest")
	})

	t.Run("duplicate pending conflicts", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		repo.GetPendingRequestFunc = func(ctx context.Context, db bun.IDB, requesterID, recipientID int64) (*socialdb.FriendRequest, error) {
			if requesterID == caller.ID && recipientID == target.ID {
				return &socialdb.FriendRequest{ID: 8, RequesterID: caller.ID, RecipientID: target.ID}, nil
			}
			return nil, socialdb.ErrNotFound
		}
		svc := newTestService(repo, players)

		_, err := svc.SendFriendRequest(context.Background(), caller.ID, "target")

		var conflict types.ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Friend request already sent", conflict.Message)
	})
}

func TestAcceptFriendRequest(t *testing.T) {
	players := NewFakePlayerDirectory()

	t.Run("unknown request", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		svc := newTestService(repo, players)

		err := svc.AcceptFriendRequest(context.Background(), 2, 99)

		var notFound types.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Friend request not found", notFound.Message)
	})

	t.Run("only the recipient may accept", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		repo.GetRequestByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*socialdb.FriendRequest, error) {
			return &socialdb.FriendRequest{ID: id, RequesterID: 1, RecipientID: 2}, nil
		}
		svc := newTestService(repo, players)

		err := svc.AcceptFriendRequest(context.Background(), 1, 5)

		var denied types.AuthorizationError
		assert.ErrorAs(t, err, &denied)
		assert.Equal(t, "Not allowed", denied.Message)
		assert.NotContains(t, repo.Trace(), "CreateFriendship")
	})

	t.Run("accept creates the edge and removes the request", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		repo.GetRequestByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*socialdb.FriendRequest, error) {
			return &socialdb.FriendRequest{ID: id, RequesterID: 1, RecipientID: 2}, nil
		}
		var edge [2]int64
		repo.CreateFriendshipFunc = func(ctx context.Context, db bun.IDB, playerID, otherID int64) error {
			edge = [2]int64{playerID, otherID}
			return nil
		}
		svc := newTestService(repo, players)

		err := svc.AcceptFriendRequest(context.Background(), 2, 5)

		assert.NoError(t, err)
		assert.Equal(t, [2]int64{2, 1}, edge)
		assert.Contains(t, repo.Trace(), "DeleteRequest")
	})
}

func TestDeclineFriendRequest(t *testing.T) {
	repo := NewFakeSocialRepo()
	repo.GetRequestByIDFunc = func(ctx context.Context, db bun.IDB, id int64) (*socialdb.FriendRequest, error) {
		return &socialdb.FriendRequest{ID: id, RequesterID: 1, RecipientID: 2}, nil
	}
	svc := newTestService(repo, NewFakePlayerDirectory())

	err := svc.DeclineFriendRequest(context.Background(), 2, 5)

	assert.NoError(t, err)
	assert.Contains(t, repo.Trace(), "DeleteRequest")
	assert.NotContains(t, repo.Trace(), "CreateFriendship")
}

func TestRemoveFriend(t *testing.T) {
	target := testPlayer(2, "auth0|target", "target")
	players := NewFakePlayerDirectory(target)

	t.Run("unknown player", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		svc := newTestService(repo, players)

		err := svc.RemoveFriend(context.Background(), 1, "auth0|stranger")

		var notFound types.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Player not found", notFound.Message)
	})

	t.Run("idempotent when not friends", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		repo.DeleteFriendshipFunc = func(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error) {
			return false, nil
		}
		svc := newTestService(repo, players)

		err := svc.RemoveFriend(context.Background(), 1, "auth0|target")

		assert.NoError(t, err)
	})

	t.Run("removes the edge", func(t *testing.T) {
		repo := NewFakeSocialRepo()
		var removed [2]int64
		repo.DeleteFriendshipFunc = func(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error) {
			removed = [2]int64{playerID, otherID}
			return true, nil
		}
		svc := newTestService(repo, players)

		err := svc.RemoveFriend(context.Background(), 1, "auth0|target")

		assert.NoError(t, err)
		assert.Equal(t, [2]int64{1, 2}, removed)
	})
}
