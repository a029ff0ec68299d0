package socialservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	socialdb "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// SendFriendRequest resolves ref to a player and creates a pending request.
// Sending to an existing friend succeeds without doing anything; a reciprocal
// pending request auto-accepts both directions instead of creating a
// duplicate.
func (s *SocialService) SendFriendRequest(ctx context.Context, callerID int64, ref string) (*FriendRequestOutcome, error) {
	result, err := withTelemetry(s, ctx, "SendFriendRequest", ref, func(ctx context.Context) (results.OperationResult[*FriendRequestOutcome, error], error) {
		ref := strings.TrimSpace(ref)
		if ref == "" {
			return results.FailureResult[*FriendRequestOutcome, error](types.NewValidationError("Friend reference is required")), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*FriendRequestOutcome, error], error) {
			return s.sendFriendRequest(ctx, db, callerID, ref)
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

func (s *SocialService) sendFriendRequest(ctx context.Context, db bun.IDB, callerID int64, ref string) (results.OperationResult[*FriendRequestOutcome, error], error) {
	fail := func(err error) (results.OperationResult[*FriendRequestOutcome, error], error) {
		return results.FailureResult[*FriendRequestOutcome, error](err), nil
	}

	target, err := s.playerDir.GetByRef(ctx, db, ref)
	if err != nil {
		if errors.Is(err, playerdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Player not found"))
		}
		return results.OperationResult[*FriendRequestOutcome, error]{}, err
	}
	if target.ID == callerID {
		return fail(types.NewValidationError("Cannot add yourself"))
	}

	alreadyFriends, err := s.repo.AreFriends(ctx, db, callerID, target.ID)
	if err != nil {
		return results.OperationResult[*FriendRequestOutcome, error]{}, err
	}
	if alreadyFriends {
		return results.SuccessResult[*FriendRequestOutcome, error](&FriendRequestOutcome{Accepted: true}), nil
	}

	// A reciprocal pending request means both sides want the edge; accept it
	// instead of stacking a second request.
	reverse, err := s.repo.GetPendingRequest(ctx, db, target.ID, callerID)
	if err != nil && !errors.Is(err, socialdb.ErrNotFound) {
		return results.OperationResult[*FriendRequestOutcome, error]{}, err
	}
	if reverse != nil {
		if err := s.repo.DeleteRequest(ctx, db, reverse.ID); err != nil {
			return results.OperationResult[*FriendRequestOutcome, error]{}, err
		}
		if err := s.repo.CreateFriendship(ctx, db, callerID, target.ID); err != nil {
			return results.OperationResult[*FriendRequestOutcome, error]{}, err
		}
		return results.SuccessResult[*FriendRequestOutcome, error](&FriendRequestOutcome{Accepted: true}), nil
	}

	existing, err := s.repo.GetPendingRequest(ctx, db, callerID, target.ID)
	if err != nil && !errors.Is(err, socialdb.ErrNotFound) {
		return results.OperationResult[*FriendRequestOutcome, error]{}, err
	}
	if existing != nil {
		return fail(types.NewConflictError("Friend request already sent"))
	}

	request := &socialdb.FriendRequest{
		RequesterID: callerID,
		RecipientID: target.ID,
	}
	if err := s.repo.CreateRequest(ctx, db, request); err != nil {
		return results.OperationResult[*FriendRequestOutcome, error]{}, err
	}
	return results.SuccessResult[*FriendRequestOutcome, error](&FriendRequestOutcome{Request: request}), nil
}

// AcceptFriendRequest creates the symmetric friendship edge and removes the
// request. Recipient only.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, callerID int64, requestID int64) error {
	result, err := withTelemetry(s, ctx, "AcceptFriendRequest", fmt.Sprintf("%d", requestID), func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
			return s.resolveRequest(ctx, db, callerID, requestID, true)
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

// DeclineFriendRequest removes the request without creating an edge.
// Recipient only.
func (s *SocialService) DeclineFriendRequest(ctx context.Context, callerID int64, requestID int64) error {
	result, err := withTelemetry(s, ctx, "DeclineFriendRequest", fmt.Sprintf("%d", requestID), func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
			return s.resolveRequest(ctx, db, callerID, requestID, false)
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

func (s *SocialService) resolveRequest(ctx context.Context, db bun.IDB, callerID int64, requestID int64, accept bool) (results.OperationResult[struct{}, error], error) {
	fail := func(err error) (results.OperationResult[struct{}, error], error) {
		return results.FailureResult[struct{}, error](err), nil
	}

	request, err := s.repo.GetRequestByID(ctx, db, requestID)
	if err != nil {
		if errors.Is(err, socialdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Friend request not found"))
		}
		return results.OperationResult[struct{}, error]{}, err
	}
	if request.RecipientID != callerID {
		return fail(types.NewAuthorizationError("Not allowed"))
	}

	if accept {
		if err := s.repo.CreateFriendship(ctx, db, request.RecipientID, request.RequesterID); err != nil {
			return results.OperationResult[struct{}, error]{}, err
		}
	}
	if err := s.repo.DeleteRequest(ctx, db, request.ID); err != nil {
		return results.OperationResult[struct{}, error]{}, err
	}
	return results.SuccessResult[struct{}, error](struct{}{}), nil
}

// RemoveFriend removes the symmetric edge. Removing a player who is not a
// friend succeeds without doing anything; an unknown player is still a 404.
func (s *SocialService) RemoveFriend(ctx context.Context, callerID int64, externalID string) error {
	result, err := withTelemetry(s, ctx, "RemoveFriend", externalID, func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
			fail := func(err error) (results.OperationResult[struct{}, error], error) {
				return results.FailureResult[struct{}, error](err), nil
			}

			target, err := s.playerDir.GetByExternalID(ctx, db, externalID)
			if err != nil {
				if errors.Is(err, playerdb.ErrNotFound) {
					return fail(types.NewNotFoundError("Player not found"))
				}
				return results.OperationResult[struct{}, error]{}, err
			}

			if _, err := s.repo.DeleteFriendship(ctx, db, callerID, target.ID); err != nil {
				return results.OperationResult[struct{}, error]{}, err
			}
			return results.SuccessResult[struct{}, error](struct{}{}), nil
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

// ListFriends returns the caller's friends, newest friendship first.
func (s *SocialService) ListFriends(ctx context.Context, callerID int64) ([]socialdb.FriendInfo, error) {
	result, err := withTelemetry(s, ctx, "ListFriends", fmt.Sprintf("%d", callerID), func(ctx context.Context) (results.OperationResult[[]socialdb.FriendInfo, error], error) {
		friends, err := s.repo.ListFriends(ctx, nil, callerID)
		if err != nil {
			return results.OperationResult[[]socialdb.FriendInfo, error]{}, err
		}
		return results.SuccessResult[[]socialdb.FriendInfo, error](friends), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// ListIncomingRequests returns the caller's pending incoming requests, newest
// first.
func (s *SocialService) ListIncomingRequests(ctx context.Context, callerID int64) ([]socialdb.RequestInfo, error) {
	result, err := withTelemetry(s, ctx, "ListIncomingRequests", fmt.Sprintf("%d", callerID), func(ctx context.Context) (results.OperationResult[[]socialdb.RequestInfo, error], error) {
		requests, err := s.repo.ListIncomingRequests(ctx, nil, callerID)
		if err != nil {
			return results.OperationResult[[]socialdb.RequestInfo, error]{}, err
		}
		return results.SuccessResult[[]socialdb.RequestInfo, error](requests), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}
