package playerhandlers

import (
	"context"
	"errors"

	playerservice "github.com/fairway-collective/links-backend/app/modules/player/application"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	playerjwt "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/jwt"
)

// FakeService is a programmable playerservice.Service.
type FakeService struct {
	EnsurePlayerFunc          func(ctx context.Context, ident playerservice.Identity) (*playerdb.Player, error)
	GetByIDFunc               func(ctx context.Context, id int64) (*playerdb.Player, error)
	GetByExternalIDFunc       func(ctx context.Context, externalID string) (*playerdb.Player, error)
	UpdateProfileFunc         func(ctx context.Context, playerID int64, update playerservice.ProfileUpdate) (*playerdb.Player, error)
	SearchPlayersFunc         func(ctx context.Context, callerID int64, query string) ([]playerdb.Player, error)
	GetStatsFunc              func(ctx context.Context, playerID int64) (*playerservice.PlayerStats, error)
	RenderScoreTrendChartFunc func(ctx context.Context, playerID int64) ([]byte, error)
}

func (f *FakeService) EnsurePlayer(ctx context.Context, ident playerservice.Identity) (*playerdb.Player, error) {
	if f.EnsurePlayerFunc != nil {
		return f.EnsurePlayerFunc(ctx, ident)
	}
	return &playerdb.Player{ID: 1, ExternalID: ident.ExternalID}, nil
}

func (f *FakeService) GetByID(ctx context.Context, id int64) (*playerdb.Player, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not set")
}

func (f *FakeService) GetByExternalID(ctx context.Context, externalID string) (*playerdb.Player, error) {
	if f.GetByExternalIDFunc != nil {
		return f.GetByExternalIDFunc(ctx, externalID)
	}
	return nil, errors.New("GetByExternalIDFunc not set")
}

func (f *FakeService) UpdateProfile(ctx context.Context, playerID int64, update playerservice.ProfileUpdate) (*playerdb.Player, error) {
	if f.UpdateProfileFunc != nil {
		return f.UpdateProfileFunc(ctx, playerID, update)
	}
	return nil, errors.New("UpdateProfileFunc not set")
}

func (f *FakeService) SearchPlayers(ctx context.Context, callerID int64, query string) ([]playerdb.Player, error) {
	if f.SearchPlayersFunc != nil {
		return f.SearchPlayersFunc(ctx, callerID, query)
	}
	return []playerdb.Player{}, nil
}

func (f *FakeService) GetStats(ctx context.Context, playerID int64) (*playerservice.PlayerStats, error) {
	if f.GetStatsFunc != nil {
		return f.GetStatsFunc(ctx, playerID)
	}
	return &playerservice.PlayerStats{}, nil
}

func (f *FakeService) RenderScoreTrendChart(ctx context.Context, playerID int64) ([]byte, error) {
	if f.RenderScoreTrendChartFunc != nil {
		return f.RenderScoreTrendChartFunc(ctx, playerID)
	}
	return []byte{0x89, 0x50, 0x4E, 0x47}, nil
}

var _ playerservice.Service = (*FakeService)(nil)

// FakeVerifier is a programmable playerjwt.Verifier.
type FakeVerifier struct {
	VerifyTokenFunc func(tokenString string) (*playerjwt.Claims, error)
}

func (f *FakeVerifier) VerifyToken(tokenString string) (*playerjwt.Claims, error) {
	if f.VerifyTokenFunc != nil {
		return f.VerifyTokenFunc(tokenString)
	}
	return nil, playerjwt.ErrInvalidToken
}

var _ playerjwt.Verifier = (*FakeVerifier)(nil)
