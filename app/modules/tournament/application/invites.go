package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// InvitePlayer creates a pending membership invite. The owner and members may
// invite; a player holds at most one pending invite per tournament.
func (s *TournamentService) InvitePlayer(ctx context.Context, callerID int64, tournamentID int64, ref string) (*tournamentdb.TournamentInvite, error) {
	result, err := withTelemetry(s, ctx, "InvitePlayer", fmt.Sprintf("%d", tournamentID), func(ctx context.Context) (results.OperationResult[*tournamentdb.TournamentInvite, error], error) {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return results.FailureResult[*tournamentdb.TournamentInvite, error](types.NewValidationError("Player reference is required")), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*tournamentdb.TournamentInvite, error], error) {
			return s.invitePlayer(ctx, db, callerID, tournamentID, ref)
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *TournamentService) invitePlayer(ctx context.Context, db bun.IDB, callerID int64, tournamentID int64, ref string) (results.OperationResult[*tournamentdb.TournamentInvite, error], error) {
	fail := func(err error) (results.OperationResult[*tournamentdb.TournamentInvite, error], error) {
		return results.FailureResult[*tournamentdb.TournamentInvite, error](err), nil
	}

	tournament, err := s.repo.GetByID(ctx, db, tournamentID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Tournament not found"))
		}
		return results.OperationResult[*tournamentdb.TournamentInvite, error]{}, err
	}
	if tournament.IsFinished() {
		return fail(types.NewConflictError("Tournament has finished"))
	}

	if tournament.OwnerPlayerID != callerID {
		member, err := s.repo.IsMember(ctx, db, tournamentID, callerID)
		if err != nil {
			return results.OperationResult[*tournamentdb.TournamentInvite, error]{}, err
		}
		if !member {
			return fail(types.NewAuthorizationError("Not allowed"))
		}
	}

	recipient, err := s.players.GetByRef(ctx, db, ref)
	if err != nil {
		if errors.Is(err, playerdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Player not found"))
		}
		return results.OperationResult[*tournamentdb.TournamentInvite, error]{}, err
	}
	if recipient.ID == callerID {
		return fail(types.NewValidationError("Cannot invite yourself"))
	}

	member, err := s.repo.IsMember(ctx, db, tournamentID, recipient.ID)
	if err != nil {
		return results.OperationResult[*tournamentdb.TournamentInvite, error]{}, err
	}
	if member {
		return fail(types.NewConflictError("Player is already a member"))
	}

	pending, err := s.repo.HasPendingInvite(ctx, db, tournamentID, recipient.ID)
	if err != nil {
		return results.OperationResult[*tournamentdb.TournamentInvite, error]{}, err
	}
	if pending {
		return fail(types.NewConflictError("Player already invited"))
	}

	invite := &tournamentdb.TournamentInvite{
		TournamentID: tournamentID,
		RequesterID:  callerID,
		RecipientID:  recipient.ID,
	}
	if err := s.repo.CreateInvite(ctx, db, invite); err != nil {
		return results.OperationResult[*tournamentdb.TournamentInvite, error]{}, err
	}
	return results.SuccessResult[*tournamentdb.TournamentInvite, error](invite), nil
}

// ListMyInvites returns the caller's pending invites, newest first.
func (s *TournamentService) ListMyInvites(ctx context.Context, callerID int64) ([]tournamentdb.InviteInfo, error) {
	result, err := withTelemetry(s, ctx, "ListMyInvites", fmt.Sprintf("player:%d", callerID), func(ctx context.Context) (results.OperationResult[[]tournamentdb.InviteInfo, error], error) {
		invites, repoErr := s.repo.ListInvitesForRecipient(ctx, nil, callerID)
		if repoErr != nil {
			return results.OperationResult[[]tournamentdb.InviteInfo, error]{}, repoErr
		}
		return results.SuccessResult[[]tournamentdb.InviteInfo, error](invites), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// AcceptInvite adds the caller as a member and removes the invite.
// Recipient only.
func (s *TournamentService) AcceptInvite(ctx context.Context, callerID int64, inviteID int64) error {
	result, err := withTelemetry(s, ctx, "AcceptInvite", fmt.Sprintf("%d", inviteID), func(ctx context.Context) (results.OperationResult[*tournamentdb.TournamentInvite, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*tournamentdb.TournamentInvite, error], error) {
			return s.resolveInvite(ctx, db, callerID, inviteID, true)
		})
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

// DeclineInvite removes the invite without joining. Recipient only.
func (s *TournamentService) DeclineInvite(ctx context.Context, callerID int64, inviteID int64) error {
	result, err := withTelemetry(s, ctx, "DeclineInvite", fmt.Sprintf("%d", inviteID), func(ctx context.Context) (results.OperationResult[*tournamentdb.TournamentInvite, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*tournamentdb.TournamentInvite, error], error) {
			return s.resolveInvite(ctx, db, callerID, inviteID, false)
		})
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

// resolveInvite settles a pending invite either way; accepting records
// membership first.
func (s *TournamentService) resolveInvite(ctx context.Context, db bun.IDB, callerID int64, inviteID int64, accept bool) (results.OperationResult[*tournamentdb.TournamentInvite, error], error) {
	fail := func(err error) (results.OperationResult[*tournamentdb.TournamentInvite, error], error) {
		return results.FailureResult[*tournamentdb.TournamentInvite, error](err), nil
	}

	invite, err := s.repo.GetInvite(ctx, db, inviteID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Invite not found"))
		}
		return results.OperationResult[*tournamentdb.TournamentInvite, error]{}, err
	}
	if invite.RecipientID != callerID {
		return fail(types.NewAuthorizationError("Not allowed"))
	}

	if accept {
		if err := s.repo.AddMember(ctx, db, invite.TournamentID, callerID); err != nil {
			return results.OperationResult[*tournamentdb.TournamentInvite, error]{}, err
		}
	}
	if err := s.repo.DeleteInvite(ctx, db, inviteID); err != nil {
		return results.OperationResult[*tournamentdb.TournamentInvite, error]{}, err
	}
	return results.SuccessResult[*tournamentdb.TournamentInvite, error](invite), nil
}
