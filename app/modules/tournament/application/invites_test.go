package tournamentservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

func servePlayer(deps *testDeps, player *playerdb.Player) {
	deps.players.GetByRefFunc = func(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error) {
		if ref == player.ExternalID {
			return player, nil
		}
		return nil, playerdb.ErrNotFound
	}
}

func TestInvitePlayer(t *testing.T) {
	t.Run("blank recipient", func(t *testing.T) {
		deps := newTestDeps()
		svc := newTestService(deps)

		_, err := svc.InvitePlayer(context.Background(), 1, 5, "   ")

		var invalid types.ValidationError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Player reference is required", invalid.Message)
		assert.Empty(t, deps.repo.Trace())
	})

	t.Run("tournament not found", func(t *testing.T) {
		deps := newTestDeps()
		svc := newTestService(deps)

		_, err := svc.InvitePlayer(context.Background(), 1, 99, "dana")

		var notFound types.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Tournament not found", notFound.Message)
	})

	t.Run("finished tournament rejects invites", func(t *testing.T) {
		deps := newTestDeps()
		tournament := clubChampionship(deps)
		done := time.Now()
		tournament.CompletedAt = &done
		svc := newTestService(deps)

		_, err := svc.InvitePlayer(context.Background(), 1, 5, "dana")

		var conflict types.ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Tournament has finished", conflict.Message)
	})

	t.Run("outsiders cannot invite", func(t *testing.T) {
		deps := newTestDeps()
		clubChampionship(deps)
		svc := newTestService(deps)

		_, err := svc.InvitePlayer(context.Background(), 3, 5, "dana")

		var denied types.AuthorizationError
		assert.ErrorAs(t, err, &denied)
		assert.Equal(t, "Not allowed", denied.Message)
		assert.NotContains(t, deps.repo.Trace(), "CreateInvite")
	})

	t.Run("unknown player", func(t *testing.T) {
		deps := newTestDeps()
		clubChampionship(deps)
		svc := newTestService(deps)

		_, err := svc.InvitePlayer(context.Background(), 1, 5, "nobody")

		var notFound types.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Player not found", notFound.Message)
	})

	t.Run("self invite", func(t *testing.T) {
		deps := newTestDeps()
		clubChampionship(deps)
		servePlayer(deps, &playerdb.Player{ID: 1, ExternalID: "owner"})
		svc := newTestService(deps)

		_, err := svc.InvitePlayer(context.Background(), 1, 5, "owner")

		var invalid types.ValidationError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Cannot invite yourself", invalid.Message)
	})

	t.Run("recipient already a member", func(t *testing.T) {
		deps := newTestDeps()
		clubChampionship(deps)
		servePlayer(deps, &playerdb.Player{ID: 4, ExternalID: "dana"})
		deps.repo.IsMemberFunc = func(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (bool, error) {
			return playerID == 4, nil
		}
		svc := newTestService(deps)

		_, err := svc.InvitePlayer(context.Background(), 1, 5, "dana")

		var conflict types.ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Player is already a member", conflict.Message)
	})

	t.Run("one pending invite per player", func(t *testing.T) {
		deps := newTestDeps()
		clubChampionship(deps)
		servePlayer(deps, &playerdb.Player{ID: 4, ExternalID: "dana"})
		deps.repo.HasPendingInviteFunc = func(ctx context.Context, db bun.IDB, tournamentID, recipientID int64) (bool, error) {
			return true, nil
		}
		svc := newTestService(deps)

		_, err := svc.InvitePlayer(context.Background(), 1, 5, "dana")

		var conflict types.ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Equal(t, "Player already invited", conflict.Message)
		assert.NotContains(t, deps.repo.Trace(), "CreateInvite")
	})

	t.Run("members invite other players", func(t *testing.T) {
		deps := newTestDeps()
		clubChampionship(deps)
		servePlayer(deps, &playerdb.Player{ID: 4, ExternalID: "dana"})
		deps.repo.IsMemberFunc = func(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (bool, error) {
			return playerID == 2, nil
		}
		svc := newTestService(deps)

		invite, err := svc.InvitePlayer(context.Background(), 2, 5, "dana")

		assert.NoError(t, err)
		assert.Equal(t, int64(1), invite.ID)
		assert.Equal(t, int64(5), invite.TournamentID)
		assert.Equal(t, int64(2), invite.RequesterID)
		assert.Equal(t, int64(4), invite.RecipientID)
	})
}

func TestListMyInvites(t *testing.T) {
	deps := newTestDeps()
	deps.repo.ListInvitesForRecipientFunc = func(ctx context.Context, db bun.IDB, playerID int64) ([]tournamentdb.InviteInfo, error) {
		assert.Equal(t, int64(4), playerID)
		return []tournamentdb.InviteInfo{
			{ID: 1, TournamentID: 5, TournamentName: "Club Championship", RequesterID: 1, RequesterLabel: "Alice"},
		}, nil
	}
	svc := newTestService(deps)

	invites, err := svc.ListMyInvites(context.Background(), 4)

	assert.NoError(t, err)
	if assert.Len(t, invites, 1) {
		assert.Equal(t, "Club Championship", invites[0].TournamentName)
		assert.Equal(t, "Alice", invites[0].RequesterLabel)
	}
}

func TestAcceptInvite(t *testing.T) {
	pendingInvite := func(deps *testDeps) {
		deps.repo.GetInviteFunc = func(ctx context.Context, db bun.IDB, id int64) (*tournamentdb.TournamentInvite, error) {
			if id == 9 {
				return &tournamentdb.TournamentInvite{ID: 9, TournamentID: 5, RequesterID: 1, RecipientID: 4}, nil
			}
			return nil, tournamentdb.ErrNotFound
		}
	}

	t.Run("invite not found", func(t *testing.T) {
		deps := newTestDeps()
		svc := newTestService(deps)

		err := svc.AcceptInvite(context.Background(), 4, 99)

		var notFound types.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Invite not found", notFound.Message)
	})

	t.Run("only the recipient may accept", func(t *testing.T) {
		deps := newTestDeps()
		pendingInvite(deps)
		svc := newTestService(deps)

		err := svc.AcceptInvite(context.Background(), 2, 9)

		var denied types.AuthorizationError
		assert.ErrorAs(t, err, &denied)
		assert.Equal(t, "Not allowed", denied.Message)
		assert.NotContains(t, deps.repo.Trace(), "AddMember")
		assert.NotContains(t, deps.repo.Trace(), "DeleteInvite")
	})

	t.Run("accept records membership and removes the invite", func(t *testing.T) {
		deps := newTestDeps()
		pendingInvite(deps)
		var memberTournament, memberPlayer int64
		deps.repo.AddMemberFunc = func(ctx context.Context, db bun.IDB, tournamentID, playerID int64) error {
			memberTournament, memberPlayer = tournamentID, playerID
			return nil
		}
		svc := newTestService(deps)

		err := svc.AcceptInvite(context.Background(), 4, 9)

		assert.NoError(t, err)
		assert.Equal(t, int64(5), memberTournament)
		assert.Equal(t, int64(4), memberPlayer)
		assert.Equal(t, []string{"GetInvite", "AddMember", "DeleteInvite"}, deps.repo.Trace())
	})
}

func TestDeclineInvite(t *testing.T) {
	t.Run("decline removes the invite without joining", func(t *testing.T) {
		deps := newTestDeps()
		deps.repo.GetInviteFunc = func(ctx context.Context, db bun.IDB, id int64) (*tournamentdb.TournamentInvite, error) {
			return &tournamentdb.TournamentInvite{ID: 9, TournamentID: 5, RequesterID: 1, RecipientID: 4}, nil
		}
		svc := newTestService(deps)

		err := svc.DeclineInvite(context.Background(), 4, 9)

		assert.NoError(t, err)
		assert.Equal(t, []string{"GetInvite", "DeleteInvite"}, deps.repo.Trace())
	})

	t.Run("only the recipient may decline", func(t *testing.T) {
		deps := newTestDeps()
		deps.repo.GetInviteFunc = func(ctx context.Context, db bun.IDB, id int64) (*tournamentdb.TournamentInvite, error) {
			return &tournamentdb.TournamentInvite{ID: 9, TournamentID: 5, RequesterID: 1, RecipientID: 4}, nil
		}
		svc := newTestService(deps)

		err := svc.DeclineInvite(context.Background(), 2, 9)

		var denied types.AuthorizationError
		assert.ErrorAs(t, err, &denied)
		assert.Equal(t, "Not allowed", denied.Message)
		assert.NotContains(t, deps.repo.Trace(), "DeleteInvite")
	})
}
