package roundhandlers

import (
	"context"
	"errors"

	roundservice "github.com/fairway-collective/links-backend/app/modules/round/application"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
)

// FakeService is a programmable roundservice.Service.
type FakeService struct {
	StartRoundFunc      func(ctx context.Context, callerID int64, input roundservice.StartRoundInput) (*roundservice.RoundDetail, error)
	SubmitScoreFunc     func(ctx context.Context, callerID int64, roundID int64, input roundservice.ScoreInput) (*roundservice.ScoreResult, error)
	AddParticipantsFunc func(ctx context.Context, callerID int64, roundID int64, input roundservice.AddParticipantsInput) (*roundservice.RoundDetail, error)
	JoinRoundFunc       func(ctx context.Context, callerID int64, roundID int64) (*roundservice.RoundDetail, error)
	DeleteRoundFunc     func(ctx context.Context, callerID int64, roundID int64) error
	ListRoundsFunc      func(ctx context.Context, callerID int64) ([]rounddb.RoundSummary, error)
	GetRoundFunc        func(ctx context.Context, callerID int64, roundID int64) (*roundservice.RoundDetail, error)
	ImportScorecardFunc func(ctx context.Context, callerID int64, courseID int64, data []byte) (*roundservice.RoundDetail, error)
}

func (f *FakeService) StartRound(ctx context.Context, callerID int64, input roundservice.StartRoundInput) (*roundservice.RoundDetail, error) {
	if f.StartRoundFunc != nil {
		return f.StartRoundFunc(ctx, callerID, input)
	}
	return nil, errors.New("StartRoundFunc not set")
}

func (f *FakeService) SubmitScore(ctx context.Context, callerID int64, roundID int64, input roundservice.ScoreInput) (*roundservice.ScoreResult, error) {
	if f.SubmitScoreFunc != nil {
		return f.SubmitScoreFunc(ctx, callerID, roundID, input)
	}
	return nil, errors.New("SubmitScoreFunc not set")
}

func (f *FakeService) AddParticipants(ctx context.Context, callerID int64, roundID int64, input roundservice.AddParticipantsInput) (*roundservice.RoundDetail, error) {
	if f.AddParticipantsFunc != nil {
		return f.AddParticipantsFunc(ctx, callerID, roundID, input)
	}
	return nil, errors.New("AddParticipantsFunc not set")
}

func (f *FakeService) JoinRound(ctx context.Context, callerID int64, roundID int64) (*roundservice.RoundDetail, error) {
	if f.JoinRoundFunc != nil {
		return f.JoinRoundFunc(ctx, callerID, roundID)
	}
	return nil, errors.New("JoinRoundFunc not set")
}

func (f *FakeService) DeleteRound(ctx context.Context, callerID int64, roundID int64) error {
	if f.DeleteRoundFunc != nil {
		return f.DeleteRoundFunc(ctx, callerID, roundID)
	}
	return nil
}

func (f *FakeService) ListRounds(ctx context.Context, callerID int64) ([]rounddb.RoundSummary, error) {
	if f.ListRoundsFunc != nil {
		return f.ListRoundsFunc(ctx, callerID)
	}
	return []rounddb.RoundSummary{}, nil
}

func (f *FakeService) GetRound(ctx context.Context, callerID int64, roundID int64) (*roundservice.RoundDetail, error) {
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, callerID, roundID)
	}
	return nil, errors.New("GetRoundFunc not set")
}

func (f *FakeService) ImportScorecard(ctx context.Context, callerID int64, courseID int64, data []byte) (*roundservice.RoundDetail, error) {
	if f.ImportScorecardFunc != nil {
		return f.ImportScorecardFunc(ctx, callerID, courseID, data)
	}
	return nil, errors.New("ImportScorecardFunc not set")
}

var _ roundservice.Service = (*FakeService)(nil)
