package socialservice

import (
	"context"

	"github.com/uptrace/bun"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	socialdb "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/repositories"
)

// ------------------------
// Fake Social Repo
// ------------------------

type FakeSocialRepo struct {
	trace []string

	// inserted records activity events passed to InsertActivityEvent.
	inserted []socialdb.ActivityEvent

	AreFriendsFunc           func(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error)
	CreateFriendshipFunc     func(ctx context.Context, db bun.IDB, playerID, otherID int64) error
	DeleteFriendshipFunc     func(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error)
	ListFriendsFunc          func(ctx context.Context, db bun.IDB, playerID int64) ([]socialdb.FriendInfo, error)
	GetRequestByIDFunc       func(ctx context.Context, db bun.IDB, id int64) (*socialdb.FriendRequest, error)
	GetPendingRequestFunc    func(ctx context.Context, db bun.IDB, requesterID, recipientID int64) (*socialdb.FriendRequest, error)
	CreateRequestFunc        func(ctx context.Context, db bun.IDB, request *socialdb.FriendRequest) error
	DeleteRequestFunc        func(ctx context.Context, db bun.IDB, id int64) error
	ListIncomingRequestsFunc func(ctx context.Context, db bun.IDB, recipientID int64) ([]socialdb.RequestInfo, error)
	InsertActivityEventFunc  func(ctx context.Context, db bun.IDB, event *socialdb.ActivityEvent) (bool, error)
	ListFriendActivityFunc   func(ctx context.Context, db bun.IDB, playerID int64, limit int) ([]socialdb.ActivityInfo, error)
	BestCompletedTotalFunc   func(ctx context.Context, db bun.IDB, playerID int64, courseID int64, holes int, excludeRoundID int64) (*int, error)
}

func NewFakeSocialRepo() *FakeSocialRepo {
	return &FakeSocialRepo{
		trace: []string{},
	}
}

func (f *FakeSocialRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the ordered repository calls made so far.
func (f *FakeSocialRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Inserted returns the activity events recorded so far.
func (f *FakeSocialRepo) Inserted() []socialdb.ActivityEvent {
	out := make([]socialdb.ActivityEvent, len(f.inserted))
	copy(out, f.inserted)
	return out
}

// --- Repository Interface Implementation ---

func (f *FakeSocialRepo) AreFriends(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error) {
	f.record("AreFriends")
	if f.AreFriendsFunc != nil {
		return f.AreFriendsFunc(ctx, db, playerID, otherID)
	}
	return false, nil
}

func (f *FakeSocialRepo) CreateFriendship(ctx context.Context, db bun.IDB, playerID, otherID int64) error {
	f.record("CreateFriendship")
	if f.CreateFriendshipFunc != nil {
		return f.CreateFriendshipFunc(ctx, db, playerID, otherID)
	}
	return nil
}

func (f *FakeSocialRepo) DeleteFriendship(ctx context.Context, db bun.IDB, playerID, otherID int64) (bool, error) {
	f.record("DeleteFriendship")
	if f.DeleteFriendshipFunc != nil {
		return f.DeleteFriendshipFunc(ctx, db, playerID, otherID)
	}
	return false, nil
}

func (f *FakeSocialRepo) ListFriends(ctx context.Context, db bun.IDB, playerID int64) ([]socialdb.FriendInfo, error) {
	f.record("ListFriends")
	if f.ListFriendsFunc != nil {
		return f.ListFriendsFunc(ctx, db, playerID)
	}
	return []socialdb.FriendInfo{}, nil
}

func (f *FakeSocialRepo) GetRequestByID(ctx context.Context, db bun.IDB, id int64) (*socialdb.FriendRequest, error) {
	f.record("GetRequestByID")
	if f.GetRequestByIDFunc != nil {
		return f.GetRequestByIDFunc(ctx, db, id)
	}
	return nil, socialdb.ErrNotFound
}

func (f *FakeSocialRepo) GetPendingRequest(ctx context.Context, db bun.IDB, requesterID, recipientID int64) (*socialdb.FriendRequest, error) {
	f.record("GetPendingRequest")
	if f.GetPendingRequestFunc != nil {
		return f.GetPendingRequestFunc(ctx, db, requesterID, recipientID)
	}
	return nil, socialdb.ErrNotFound
}

func (f *FakeSocialRepo) CreateRequest(ctx context.Context, db bun.IDB, request *socialdb.FriendRequest) error {
	f.record("CreateRequest")
	if f.CreateRequestFunc != nil {
		return f.CreateRequestFunc(ctx, db, request)
	}
	request.ID = 1
	return nil
}

func (f *FakeSocialRepo) DeleteRequest(ctx context.Context, db bun.IDB, id int64) error {
	f.record("DeleteRequest")
	if f.DeleteRequestFunc != nil {
		return f.DeleteRequestFunc(ctx, db, id)
	}
	return nil
}

func (f *FakeSocialRepo) ListIncomingRequests(ctx context.Context, db bun.IDB, recipientID int64) ([]socialdb.RequestInfo, error) {
	f.record("ListIncomingRequests")
	if f.ListIncomingRequestsFunc != nil {
		return f.ListIncomingRequestsFunc(ctx, db, recipientID)
	}
	return []socialdb.RequestInfo{}, nil
}

func (f *FakeSocialRepo) InsertActivityEvent(ctx context.Context, db bun.IDB, event *socialdb.ActivityEvent) (bool, error) {
	f.record("InsertActivityEvent")
	if f.InsertActivityEventFunc != nil {
		return f.InsertActivityEventFunc(ctx, db, event)
	}
	f.inserted = append(f.inserted, *event)
	return true, nil
}

func (f *FakeSocialRepo) ListFriendActivity(ctx context.Context, db bun.IDB, playerID int64, limit int) ([]socialdb.ActivityInfo, error) {
	f.record("ListFriendActivity")
	if f.ListFriendActivityFunc != nil {
		return f.ListFriendActivityFunc(ctx, db, playerID, limit)
	}
	return []socialdb.ActivityInfo{}, nil
}

func (f *FakeSocialRepo) BestCompletedTotal(ctx context.Context, db bun.IDB, playerID int64, courseID int64, holes int, excludeRoundID int64) (*int, error) {
	f.record("BestCompletedTotal")
	if f.BestCompletedTotalFunc != nil {
		return f.BestCompletedTotalFunc(ctx, db, playerID, courseID, holes, excludeRoundID)
	}
	return nil, nil
}

var _ socialdb.Repository = (*FakeSocialRepo)(nil)

// ------------------------
// Fake Player Directory
// ------------------------

type FakePlayerDirectory struct {
	// players is the directory, keyed by id.
	players map[int64]*playerdb.Player

	GetByIDFunc         func(ctx context.Context, db bun.IDB, id int64) (*playerdb.Player, error)
	GetByExternalIDFunc func(ctx context.Context, db bun.IDB, externalID string) (*playerdb.Player, error)
	GetByRefFunc        func(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error)
}

func NewFakePlayerDirectory(players ...*playerdb.Player) *FakePlayerDirectory {
	dir := &FakePlayerDirectory{players: map[int64]*playerdb.Player{}}
	for _, p := range players {
		dir.players[p.ID] = p
	}
	return dir
}

func (f *FakePlayerDirectory) GetByID(ctx context.Context, db bun.IDB, id int64) (*playerdb.Player, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	if p, ok := f.players[id]; ok {
		return p, nil
	}
	return nil, playerdb.ErrNotFound
}

func (f *FakePlayerDirectory) GetByExternalID(ctx context.Context, db bun.IDB, externalID string) (*playerdb.Player, error) {
	if f.GetByExternalIDFunc != nil {
		return f.GetByExternalIDFunc(ctx, db, externalID)
	}
	for _, p := range f.players {
		if p.ExternalID == externalID {
			return p, nil
		}
	}
	return nil, playerdb.ErrNotFound
}

func (f *FakePlayerDirectory) GetByRef(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error) {
	if f.GetByRefFunc != nil {
		return f.GetByRefFunc(ctx, db, ref)
	}
	for _, p := range f.players {
		if p.ExternalID == ref {
			return p, nil
		}
		if p.Email != nil && *p.Email == ref {
			return p, nil
		}
		if p.Username != nil && *p.Username == ref {
			return p, nil
		}
	}
	return nil, playerdb.ErrNotFound
}

var _ PlayerDirectory = (*FakePlayerDirectory)(nil)
