package playerservice

import (
	"context"

	"github.com/uptrace/bun"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
)

// ------------------------
// Fake Player Repo
// ------------------------

type FakePlayerRepo struct {
	trace []string

	GetByIDFunc                     func(ctx context.Context, db bun.IDB, id int64) (*playerdb.Player, error)
	GetByExternalIDFunc             func(ctx context.Context, db bun.IDB, externalID string) (*playerdb.Player, error)
	GetByRefFunc                    func(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error)
	CreateFunc                      func(ctx context.Context, db bun.IDB, player *playerdb.Player) error
	UpdateFunc                      func(ctx context.Context, db bun.IDB, player *playerdb.Player) error
	ExistsWithUsernameFunc          func(ctx context.Context, db bun.IDB, username string, excludeID int64) (bool, error)
	ExistsWithEmailFunc             func(ctx context.Context, db bun.IDB, email string, excludeID int64) (bool, error)
	SearchFunc                      func(ctx context.Context, db bun.IDB, query string, excludeID int64, limit int) ([]playerdb.Player, error)
	GetCompletedRoundAggregatesFunc func(ctx context.Context, db bun.IDB, playerID int64) ([]playerdb.RoundAggregate, error)
	GetScoringAveragesFunc          func(ctx context.Context, db bun.IDB, playerID int64) (*playerdb.ScoringAverages, error)
	CountActivityKindsFunc          func(ctx context.Context, db bun.IDB, playerID int64) (map[string]int, error)
}

func NewFakePlayerRepo() *FakePlayerRepo {
	return &FakePlayerRepo{
		trace: []string{},
	}
}

func (f *FakePlayerRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakePlayerRepo) GetByID(ctx context.Context, db bun.IDB, id int64) (*playerdb.Player, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, playerdb.ErrNotFound
}

func (f *FakePlayerRepo) GetByExternalID(ctx context.Context, db bun.IDB, externalID string) (*playerdb.Player, error) {
	f.record("GetByExternalID")
	if f.GetByExternalIDFunc != nil {
		return f.GetByExternalIDFunc(ctx, db, externalID)
	}
	return nil, playerdb.ErrNotFound
}

func (f *FakePlayerRepo) GetByRef(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error) {
	f.record("GetByRef")
	if f.GetByRefFunc != nil {
		return f.GetByRefFunc(ctx, db, ref)
	}
	return nil, playerdb.ErrNotFound
}

func (f *FakePlayerRepo) Create(ctx context.Context, db bun.IDB, player *playerdb.Player) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, player)
	}
	player.ID = 1
	return nil
}

func (f *FakePlayerRepo) Update(ctx context.Context, db bun.IDB, player *playerdb.Player) error {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, db, player)
	}
	return nil
}

func (f *FakePlayerRepo) ExistsWithUsername(ctx context.Context, db bun.IDB, username string, excludeID int64) (bool, error) {
	f.record("ExistsWithUsername")
	if f.ExistsWithUsernameFunc != nil {
		return f.ExistsWithUsernameFunc(ctx, db, username, excludeID)
	}
	return false, nil
}

func (f *FakePlayerRepo) ExistsWithEmail(ctx context.Context, db bun.IDB, email string, excludeID int64) (bool, error) {
	f.record("ExistsWithEmail")
	if f.ExistsWithEmailFunc != nil {
		return f.ExistsWithEmailFunc(ctx, db, email, excludeID)
	}
	return false, nil
}

func (f *FakePlayerRepo) Search(ctx context.Context, db bun.IDB, query string, excludeID int64, limit int) ([]playerdb.Player, error) {
	f.record("Search")
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, db, query, excludeID, limit)
	}
	return []playerdb.Player{}, nil
}

func (f *FakePlayerRepo) GetCompletedRoundAggregates(ctx context.Context, db bun.IDB, playerID int64) ([]playerdb.RoundAggregate, error) {
	f.record("GetCompletedRoundAggregates")
	if f.GetCompletedRoundAggregatesFunc != nil {
		return f.GetCompletedRoundAggregatesFunc(ctx, db, playerID)
	}
	return []playerdb.RoundAggregate{}, nil
}

func (f *FakePlayerRepo) GetScoringAverages(ctx context.Context, db bun.IDB, playerID int64) (*playerdb.ScoringAverages, error) {
	f.record("GetScoringAverages")
	if f.GetScoringAveragesFunc != nil {
		return f.GetScoringAveragesFunc(ctx, db, playerID)
	}
	return &playerdb.ScoringAverages{}, nil
}

func (f *FakePlayerRepo) CountActivityKinds(ctx context.Context, db bun.IDB, playerID int64) (map[string]int, error) {
	f.record("CountActivityKinds")
	if f.CountActivityKindsFunc != nil {
		return f.CountActivityKindsFunc(ctx, db, playerID)
	}
	return map[string]int{}, nil
}

// --- Accessors for assertions ---

func (f *FakePlayerRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ playerdb.Repository = (*FakePlayerRepo)(nil)
