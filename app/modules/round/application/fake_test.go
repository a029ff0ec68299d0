package roundservice

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/uptrace/bun"

	"github.com/fairway-collective/links-backend/app/eventbus"
	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
)

// ------------------------
// Fake Round Repo
// ------------------------

type FakeRoundRepo struct {
	trace          []string
	participantSeq int64

	CreateFunc                 func(ctx context.Context, db bun.IDB, round *rounddb.Round) error
	GetByIDFunc                func(ctx context.Context, db bun.IDB, id int64) (*rounddb.Round, error)
	ListSummariesForPlayerFunc func(ctx context.Context, db bun.IDB, playerID int64) ([]rounddb.RoundSummary, error)
	GetParticipantsFunc        func(ctx context.Context, db bun.IDB, roundID int64) ([]rounddb.ParticipantInfo, error)
	AddParticipantsFunc        func(ctx context.Context, db bun.IDB, participants []rounddb.RoundParticipant) error
	GetCellsFunc               func(ctx context.Context, db bun.IDB, roundID int64) ([]rounddb.ScoreCell, error)
	UpsertCellFunc             func(ctx context.Context, db bun.IDB, cell *rounddb.ScoreCell) error
	InsertCellsFunc            func(ctx context.Context, db bun.IDB, cells []rounddb.ScoreCell) error
	CountCellsFunc             func(ctx context.Context, db bun.IDB, roundID int64) (int, error)
	SetCompletedFunc           func(ctx context.Context, db bun.IDB, roundID int64, completedAt time.Time) error
	HasActiveRoundFunc         func(ctx context.Context, db bun.IDB, ownerID int64) (bool, error)
	DeleteFunc                 func(ctx context.Context, db bun.IDB, roundID int64) error
	DeleteIfAbandonedFunc      func(ctx context.Context, db bun.IDB, roundID int64) (bool, error)
	ListAbandonedFunc          func(ctx context.Context, db bun.IDB, cutoff time.Time) ([]int64, error)
	GetTournamentLockStateFunc func(ctx context.Context, db bun.IDB, tournamentID int64) (*rounddb.TournamentLockState, error)
}

func NewFakeRoundRepo() *FakeRoundRepo {
	return &FakeRoundRepo{
		trace: []string{},
	}
}

func (f *FakeRoundRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeRoundRepo) Create(ctx context.Context, db bun.IDB, round *rounddb.Round) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, round)
	}
	round.ID = 1
	return nil
}

func (f *FakeRoundRepo) GetByID(ctx context.Context, db bun.IDB, id int64) (*rounddb.Round, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, rounddb.ErrNotFound
}

func (f *FakeRoundRepo) ListSummariesForPlayer(ctx context.Context, db bun.IDB, playerID int64) ([]rounddb.RoundSummary, error) {
	f.record("ListSummariesForPlayer")
	if f.ListSummariesForPlayerFunc != nil {
		return f.ListSummariesForPlayerFunc(ctx, db, playerID)
	}
	return []rounddb.RoundSummary{}, nil
}

func (f *FakeRoundRepo) GetParticipants(ctx context.Context, db bun.IDB, roundID int64) ([]rounddb.ParticipantInfo, error) {
	f.record("GetParticipants")
	if f.GetParticipantsFunc != nil {
		return f.GetParticipantsFunc(ctx, db, roundID)
	}
	return []rounddb.ParticipantInfo{}, nil
}

func (f *FakeRoundRepo) AddParticipants(ctx context.Context, db bun.IDB, participants []rounddb.RoundParticipant) error {
	f.record("AddParticipants")
	if f.AddParticipantsFunc != nil {
		return f.AddParticipantsFunc(ctx, db, participants)
	}
	for i := range participants {
		f.participantSeq++
		participants[i].ID = f.participantSeq
	}
	return nil
}

func (f *FakeRoundRepo) GetCells(ctx context.Context, db bun.IDB, roundID int64) ([]rounddb.ScoreCell, error) {
	f.record("GetCells")
	if f.GetCellsFunc != nil {
		return f.GetCellsFunc(ctx, db, roundID)
	}
	return []rounddb.ScoreCell{}, nil
}

func (f *FakeRoundRepo) UpsertCell(ctx context.Context, db bun.IDB, cell *rounddb.ScoreCell) error {
	f.record("UpsertCell")
	if f.UpsertCellFunc != nil {
		return f.UpsertCellFunc(ctx, db, cell)
	}
	return nil
}

func (f *FakeRoundRepo) InsertCells(ctx context.Context, db bun.IDB, cells []rounddb.ScoreCell) error {
	f.record("InsertCells")
	if f.InsertCellsFunc != nil {
		return f.InsertCellsFunc(ctx, db, cells)
	}
	return nil
}

func (f *FakeRoundRepo) CountCells(ctx context.Context, db bun.IDB, roundID int64) (int, error) {
	f.record("CountCells")
	if f.CountCellsFunc != nil {
		return f.CountCellsFunc(ctx, db, roundID)
	}
	return 0, nil
}

func (f *FakeRoundRepo) SetCompleted(ctx context.Context, db bun.IDB, roundID int64, completedAt time.Time) error {
	f.record("SetCompleted")
	if f.SetCompletedFunc != nil {
		return f.SetCompletedFunc(ctx, db, roundID, completedAt)
	}
	return nil
}

func (f *FakeRoundRepo) HasActiveRound(ctx context.Context, db bun.IDB, ownerID int64) (bool, error) {
	f.record("HasActiveRound")
	if f.HasActiveRoundFunc != nil {
		return f.HasActiveRoundFunc(ctx, db, ownerID)
	}
	return false, nil
}

func (f *FakeRoundRepo) Delete(ctx context.Context, db bun.IDB, roundID int64) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, roundID)
	}
	return nil
}

func (f *FakeRoundRepo) DeleteIfAbandoned(ctx context.Context, db bun.IDB, roundID int64) (bool, error) {
	f.record("DeleteIfAbandoned")
	if f.DeleteIfAbandonedFunc != nil {
		return f.DeleteIfAbandonedFunc(ctx, db, roundID)
	}
	return false, nil
}

func (f *FakeRoundRepo) ListAbandoned(ctx context.Context, db bun.IDB, cutoff time.Time) ([]int64, error) {
	f.record("ListAbandoned")
	if f.ListAbandonedFunc != nil {
		return f.ListAbandonedFunc(ctx, db, cutoff)
	}
	return []int64{}, nil
}

func (f *FakeRoundRepo) GetTournamentLockState(ctx context.Context, db bun.IDB, tournamentID int64) (*rounddb.TournamentLockState, error) {
	f.record("GetTournamentLockState")
	if f.GetTournamentLockStateFunc != nil {
		return f.GetTournamentLockStateFunc(ctx, db, tournamentID)
	}
	return nil, rounddb.ErrNotFound
}

// --- Accessors for assertions ---

func (f *FakeRoundRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ rounddb.Repository = (*FakeRoundRepo)(nil)

// ------------------------
// Fake Course Catalog
// ------------------------

type FakeCourseCatalog struct {
	GetDetailFunc func(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error)
}

func (f *FakeCourseCatalog) GetDetail(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error) {
	if f.GetDetailFunc != nil {
		return f.GetDetailFunc(ctx, db, id)
	}
	return nil, coursedb.ErrNotFound
}

var _ CourseCatalog = (*FakeCourseCatalog)(nil)

// ------------------------
// Fake Player Directory
// ------------------------

type FakePlayerDirectory struct {
	GetByRefFunc func(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error)
}

func (f *FakePlayerDirectory) GetByRef(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error) {
	if f.GetByRefFunc != nil {
		return f.GetByRefFunc(ctx, db, ref)
	}
	return nil, playerdb.ErrNotFound
}

var _ PlayerDirectory = (*FakePlayerDirectory)(nil)

// ------------------------
// Fake Expiry Scheduler
// ------------------------

type scheduledExpiry struct {
	RoundID int64
	RunAt   time.Time
}

type FakeScheduler struct {
	Scheduled []scheduledExpiry
	Cancelled []int64

	ScheduleRoundExpiryFunc func(ctx context.Context, roundID int64, runAt time.Time) error
	CancelRoundExpiryFunc   func(ctx context.Context, roundID int64) error
}

func (f *FakeScheduler) ScheduleRoundExpiry(ctx context.Context, roundID int64, runAt time.Time) error {
	f.Scheduled = append(f.Scheduled, scheduledExpiry{RoundID: roundID, RunAt: runAt})
	if f.ScheduleRoundExpiryFunc != nil {
		return f.ScheduleRoundExpiryFunc(ctx, roundID, runAt)
	}
	return nil
}

func (f *FakeScheduler) CancelRoundExpiry(ctx context.Context, roundID int64) error {
	f.Cancelled = append(f.Cancelled, roundID)
	if f.CancelRoundExpiryFunc != nil {
		return f.CancelRoundExpiryFunc(ctx, roundID)
	}
	return nil
}

var _ ExpiryScheduler = (*FakeScheduler)(nil)

// ------------------------
// Fake Event Bus
// ------------------------

// FakeEventBus records published messages per topic.
type FakeEventBus struct {
	mu        sync.Mutex
	published map[string][]*message.Message

	PublishFunc func(topic string, messages ...*message.Message) error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{
		published: map[string][]*message.Message{},
	}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	f.published[topic] = append(f.published[topic], messages...)
	f.mu.Unlock()
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) Close() error { return nil }

func (f *FakeEventBus) CreateStream(ctx context.Context, streamName string, subject string) error {
	return nil
}

func (f *FakeEventBus) GetJetStream() jetstream.JetStream { return nil }

func (f *FakeEventBus) IsConnected() bool { return true }

// Published returns the messages recorded for a topic.
func (f *FakeEventBus) Published(topic string) []*message.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*message.Message, len(f.published[topic]))
	copy(out, f.published[topic])
	return out
}

var _ eventbus.EventBus = (*FakeEventBus)(nil)
