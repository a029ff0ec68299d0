package tournamentservice

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/uptrace/bun"

	"github.com/fairway-collective/links-backend/app/eventbus"
	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	roundservice "github.com/fairway-collective/links-backend/app/modules/round/application"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
)

// ------------------------
// Fake Tournament Repo
// ------------------------

type FakeTournamentRepo struct {
	trace     []string
	groupSeq  int64
	inviteSeq int64

	CreateFunc                  func(ctx context.Context, db bun.IDB, tournament *tournamentdb.Tournament) error
	GetByIDFunc                 func(ctx context.Context, db bun.IDB, id int64) (*tournamentdb.Tournament, error)
	UpdateFunc                  func(ctx context.Context, db bun.IDB, tournament *tournamentdb.Tournament) error
	DeleteFunc                  func(ctx context.Context, db bun.IDB, id int64) error
	ListVisibleFunc             func(ctx context.Context, db bun.IDB, playerID int64) ([]tournamentdb.TournamentSummary, error)
	AddGroupsFunc               func(ctx context.Context, db bun.IDB, groups []tournamentdb.TournamentGroup) error
	ListGroupsFunc              func(ctx context.Context, db bun.IDB, tournamentID int64) ([]tournamentdb.TournamentGroup, error)
	AddMemberFunc               func(ctx context.Context, db bun.IDB, tournamentID, playerID int64) error
	IsMemberFunc                func(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (bool, error)
	CreateInviteFunc            func(ctx context.Context, db bun.IDB, invite *tournamentdb.TournamentInvite) error
	GetInviteFunc               func(ctx context.Context, db bun.IDB, id int64) (*tournamentdb.TournamentInvite, error)
	DeleteInviteFunc            func(ctx context.Context, db bun.IDB, id int64) error
	HasPendingInviteFunc        func(ctx context.Context, db bun.IDB, tournamentID, recipientID int64) (bool, error)
	ListInvitesForRecipientFunc func(ctx context.Context, db bun.IDB, playerID int64) ([]tournamentdb.InviteInfo, error)
	ListGroupRoundsFunc         func(ctx context.Context, db bun.IDB, tournamentID int64) ([]tournamentdb.GroupRound, error)
	ListParticipantsFunc        func(ctx context.Context, db bun.IDB, tournamentID int64) ([]tournamentdb.ParticipantRow, error)
	ListScoresFunc              func(ctx context.Context, db bun.IDB, tournamentID int64) ([]tournamentdb.ScoreRow, error)
	FindPlayerRoundFunc         func(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (*int64, error)
	HasOpenRoundsFunc           func(ctx context.Context, db bun.IDB, tournamentID int64) (bool, error)
	DetachRoundsFunc            func(ctx context.Context, db bun.IDB, tournamentID int64) error
}

func NewFakeTournamentRepo() *FakeTournamentRepo {
	return &FakeTournamentRepo{
		trace: []string{},
	}
}

func (f *FakeTournamentRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeTournamentRepo) Create(ctx context.Context, db bun.IDB, tournament *tournamentdb.Tournament) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, tournament)
	}
	tournament.ID = 1
	return nil
}

func (f *FakeTournamentRepo) GetByID(ctx context.Context, db bun.IDB, id int64) (*tournamentdb.Tournament, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, tournamentdb.ErrNotFound
}

func (f *FakeTournamentRepo) Update(ctx context.Context, db bun.IDB, tournament *tournamentdb.Tournament) error {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, db, tournament)
	}
	return nil
}

func (f *FakeTournamentRepo) Delete(ctx context.Context, db bun.IDB, id int64) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	return nil
}

func (f *FakeTournamentRepo) ListVisible(ctx context.Context, db bun.IDB, playerID int64) ([]tournamentdb.TournamentSummary, error) {
	f.record("ListVisible")
	if f.ListVisibleFunc != nil {
		return f.ListVisibleFunc(ctx, db, playerID)
	}
	return []tournamentdb.TournamentSummary{}, nil
}

func (f *FakeTournamentRepo) AddGroups(ctx context.Context, db bun.IDB, groups []tournamentdb.TournamentGroup) error {
	f.record("AddGroups")
	if f.AddGroupsFunc != nil {
		return f.AddGroupsFunc(ctx, db, groups)
	}
	for i := range groups {
		f.groupSeq++
		groups[i].ID = f.groupSeq
	}
	return nil
}

func (f *FakeTournamentRepo) ListGroups(ctx context.Context, db bun.IDB, tournamentID int64) ([]tournamentdb.TournamentGroup, error) {
	f.record("ListGroups")
	if f.ListGroupsFunc != nil {
		return f.ListGroupsFunc(ctx, db, tournamentID)
	}
	return []tournamentdb.TournamentGroup{}, nil
}

func (f *FakeTournamentRepo) AddMember(ctx context.Context, db bun.IDB, tournamentID, playerID int64) error {
	f.record("AddMember")
	if f.AddMemberFunc != nil {
		return f.AddMemberFunc(ctx, db, tournamentID, playerID)
	}
	return nil
}

func (f *FakeTournamentRepo) IsMember(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (bool, error) {
	f.record("IsMember")
	if f.IsMemberFunc != nil {
		return f.IsMemberFunc(ctx, db, tournamentID, playerID)
	}
	return false, nil
}

func (f *FakeTournamentRepo) CreateInvite(ctx context.Context, db bun.IDB, invite *tournamentdb.TournamentInvite) error {
	f.record("CreateInvite")
	if f.CreateInviteFunc != nil {
		return f.CreateInviteFunc(ctx, db, invite)
	}
	f.inviteSeq++
	invite.ID = f.inviteSeq
	return nil
}

func (f *FakeTournamentRepo) GetInvite(ctx context.Context, db bun.IDB, id int64) (*tournamentdb.TournamentInvite, error) {
	f.record("GetInvite")
	if f.GetInviteFunc != nil {
		return f.GetInviteFunc(ctx, db, id)
	}
	return nil, tournamentdb.ErrNotFound
}

func (f *FakeTournamentRepo) DeleteInvite(ctx context.Context, db bun.IDB, id int64) error {
	f.record("DeleteInvite")
	if f.DeleteInviteFunc != nil {
		return f.DeleteInviteFunc(ctx, db, id)
	}
	return nil
}

func (f *FakeTournamentRepo) HasPendingInvite(ctx context.Context, db bun.IDB, tournamentID, recipientID int64) (bool, error) {
	f.record("HasPendingInvite")
	if f.HasPendingInviteFunc != nil {
		return f.HasPendingInviteFunc(ctx, db, tournamentID, recipientID)
	}
	return false, nil
}

func (f *FakeTournamentRepo) ListInvitesForRecipient(ctx context.Context, db bun.IDB, playerID int64) ([]tournamentdb.InviteInfo, error) {
	f.record("ListInvitesForRecipient")
	if f.ListInvitesForRecipientFunc != nil {
		return f.ListInvitesForRecipientFunc(ctx, db, playerID)
	}
	return []tournamentdb.InviteInfo{}, nil
}

func (f *FakeTournamentRepo) ListGroupRounds(ctx context.Context, db bun.IDB, tournamentID int64) ([]tournamentdb.GroupRound, error) {
	f.record("ListGroupRounds")
	if f.ListGroupRoundsFunc != nil {
		return f.ListGroupRoundsFunc(ctx, db, tournamentID)
	}
	return []tournamentdb.GroupRound{}, nil
}

func (f *FakeTournamentRepo) ListParticipants(ctx context.Context, db bun.IDB, tournamentID int64) ([]tournamentdb.ParticipantRow, error) {
	f.record("ListParticipants")
	if f.ListParticipantsFunc != nil {
		return f.ListParticipantsFunc(ctx, db, tournamentID)
	}
	return []tournamentdb.ParticipantRow{}, nil
}

func (f *FakeTournamentRepo) ListScores(ctx context.Context, db bun.IDB, tournamentID int64) ([]tournamentdb.ScoreRow, error) {
	f.record("ListScores")
	if f.ListScoresFunc != nil {
		return f.ListScoresFunc(ctx, db, tournamentID)
	}
	return []tournamentdb.ScoreRow{}, nil
}

func (f *FakeTournamentRepo) FindPlayerRound(ctx context.Context, db bun.IDB, tournamentID, playerID int64) (*int64, error) {
	f.record("FindPlayerRound")
	if f.FindPlayerRoundFunc != nil {
		return f.FindPlayerRoundFunc(ctx, db, tournamentID, playerID)
	}
	return nil, nil
}

func (f *FakeTournamentRepo) HasOpenRounds(ctx context.Context, db bun.IDB, tournamentID int64) (bool, error) {
	f.record("HasOpenRounds")
	if f.HasOpenRoundsFunc != nil {
		return f.HasOpenRoundsFunc(ctx, db, tournamentID)
	}
	return false, nil
}

func (f *FakeTournamentRepo) DetachRounds(ctx context.Context, db bun.IDB, tournamentID int64) error {
	f.record("DetachRounds")
	if f.DetachRoundsFunc != nil {
		return f.DetachRoundsFunc(ctx, db, tournamentID)
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeTournamentRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ tournamentdb.Repository = (*FakeTournamentRepo)(nil)

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
// Fake Group Rounds
// ------------------------

type startRoundCall struct {
	CallerID int64
	Input    roundservice.StartRoundInput
}

type joinRoundCall struct {
	CallerID int64
	RoundID  int64
}

// FakeGroupRounds records delegated round starts and joins. The defaults
// succeed with a minimal detail so group-binding assertions can run against
// the recorded inputs.
type FakeGroupRounds struct {
	Started []startRoundCall
	Joined  []joinRoundCall

	StartRoundFunc func(ctx context.Context, callerID int64, input roundservice.StartRoundInput) (*roundservice.RoundDetail, error)
	JoinRoundFunc  func(ctx context.Context, callerID int64, roundID int64) (*roundservice.RoundDetail, error)
}

func (f *FakeGroupRounds) StartRound(ctx context.Context, callerID int64, input roundservice.StartRoundInput) (*roundservice.RoundDetail, error) {
	f.Started = append(f.Started, startRoundCall{CallerID: callerID, Input: input})
	if f.StartRoundFunc != nil {
		return f.StartRoundFunc(ctx, callerID, input)
	}
	return &roundservice.RoundDetail{
		Round: &rounddb.Round{
			ID:                100,
			OwnerPlayerID:     callerID,
			CourseID:          input.CourseID,
			TournamentID:      input.TournamentID,
			TournamentGroupID: input.TournamentGroupID,
		},
		State: roundservice.StateOpen,
	}, nil
}

func (f *FakeGroupRounds) JoinRound(ctx context.Context, callerID int64, roundID int64) (*roundservice.RoundDetail, error) {
	f.Joined = append(f.Joined, joinRoundCall{CallerID: callerID, RoundID: roundID})
	if f.JoinRoundFunc != nil {
		return f.JoinRoundFunc(ctx, callerID, roundID)
	}
	return &roundservice.RoundDetail{
		Round: &rounddb.Round{ID: roundID},
		State: roundservice.StateOpen,
	}, nil
}

var _ GroupRounds = (*FakeGroupRounds)(nil)

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
