package socialhandlers

import (
	"context"
	"errors"

	socialservice "github.com/fairway-collective/links-backend/app/modules/social/application"
	socialdb "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/events"
)

// FakeService is a programmable socialservice.Service.
type FakeService struct {
	SendFriendRequestFunc     func(ctx context.Context, callerID int64, ref string) (*socialservice.FriendRequestOutcome, error)
	AcceptFriendRequestFunc   func(ctx context.Context, callerID int64, requestID int64) error
	DeclineFriendRequestFunc  func(ctx context.Context, callerID int64, requestID int64) error
	RemoveFriendFunc          func(ctx context.Context, callerID int64, externalID string) error
	ListFriendsFunc           func(ctx context.Context, callerID int64) ([]socialdb.FriendInfo, error)
	ListIncomingRequestsFunc  func(ctx context.Context, callerID int64) ([]socialdb.RequestInfo, error)
	GetActivityFeedFunc       func(ctx context.Context, callerID int64, limit int) ([]socialdb.ActivityInfo, error)
	RecordScoreActivityFunc   func(ctx context.Context, payload *events.ScoreSubmittedPayloadV1) ([]socialdb.ActivityEvent, error)
	RecordRoundCompletionFunc func(ctx context.Context, payload *events.RoundCompletedPayloadV1) ([]socialdb.ActivityEvent, error)
}

func (f *FakeService) SendFriendRequest(ctx context.Context, callerID int64, ref string) (*socialservice.FriendRequestOutcome, error) {
	if f.SendFriendRequestFunc != nil {
		return f.SendFriendRequestFunc(ctx, callerID, ref)
	}
	return nil, errors.New("SendFriendRequestFunc not set")
}

func (f *FakeService) AcceptFriendRequest(ctx context.Context, callerID int64, requestID int64) error {
	if f.AcceptFriendRequestFunc != nil {
		return f.AcceptFriendRequestFunc(ctx, callerID, requestID)
	}
	return nil
}

func (f *FakeService) DeclineFriendRequest(ctx context.Context, callerID int64, requestID int64) error {
	if f.DeclineFriendRequestFunc != nil {
		return f.DeclineFriendRequestFunc(ctx, callerID, requestID)
	}
	return nil
}

func (f *FakeService) RemoveFriend(ctx context.Context, callerID int64, externalID string) error {
	if f.RemoveFriendFunc != nil {
		return f.RemoveFriendFunc(ctx, callerID, externalID)
	}
	return nil
}

func (f *FakeService) ListFriends(ctx context.Context, callerID int64) ([]socialdb.FriendInfo, error) {
	if f.ListFriendsFunc != nil {
		return f.ListFriendsFunc(ctx, callerID)
	}
	return []socialdb.FriendInfo{}, nil
}

func (f *FakeService) ListIncomingRequests(ctx context.Context, callerID int64) ([]socialdb.RequestInfo, error) {
	if f.ListIncomingRequestsFunc != nil {
		return f.ListIncomingRequestsFunc(ctx, callerID)
	}
	return []socialdb.RequestInfo{}, nil
}

func (f *FakeService) GetActivityFeed(ctx context.Context, callerID int64, limit int) ([]socialdb.ActivityInfo, error) {
	if f.GetActivityFeedFunc != nil {
		return f.GetActivityFeedFunc(ctx, callerID, limit)
	}
	return []socialdb.ActivityInfo{}, nil
}

func (f *FakeService) RecordScoreActivity(ctx context.Context, payload *events.ScoreSubmittedPayloadV1) ([]socialdb.ActivityEvent, error) {
	if f.RecordScoreActivityFunc != nil {
		return f.RecordScoreActivityFunc(ctx, payload)
	}
	return nil, nil
}

func (f *FakeService) RecordRoundCompletion(ctx context.Context, payload *events.RoundCompletedPayloadV1) ([]socialdb.ActivityEvent, error) {
	if f.RecordRoundCompletionFunc != nil {
		return f.RecordRoundCompletionFunc(ctx, payload)
	}
	return nil, nil
}

var _ socialservice.Service = (*FakeService)(nil)
