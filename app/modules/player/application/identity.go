package playerservice

import (
	"context"
	"errors"
	"strings"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/results"
)

// Identity carries the verified subject of an incoming request.
type Identity struct {
	ExternalID string
	Email      *string
	Name       *string
}

// EnsurePlayer returns the player for the given identity, creating the
// record on first contact. Profile fields from the token are only applied
// on creation; later edits go through UpdateProfile.
func (s *PlayerService) EnsurePlayer(ctx context.Context, ident Identity) (*playerdb.Player, error) {
	result, err := withTelemetry(s, ctx, "EnsurePlayer", ident.ExternalID, func(ctx context.Context) (results.OperationResult[*playerdb.Player, error], error) {
		return s.ensurePlayer(ctx, ident)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// ensurePlayer runs outside an explicit transaction: after a lost insert race
// the retry lookup must still be able to query.
func (s *PlayerService) ensurePlayer(ctx context.Context, ident Identity) (results.OperationResult[*playerdb.Player, error], error) {
	existing, err := s.repo.GetByExternalID(ctx, nil, ident.ExternalID)
	if err == nil {
		return results.SuccessResult[*playerdb.Player, error](existing), nil
	}
	if !errors.Is(err, playerdb.ErrNotFound) {
		return results.OperationResult[*playerdb.Player, error]{}, err
	}

	player := &playerdb.Player{
		ExternalID: ident.ExternalID,
		Name:       ident.Name,
	}
	if ident.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*ident.Email))
		if email != "" {
			player.Email = &email
		}
	}

	if createErr := s.repo.Create(ctx, nil, player); createErr != nil {
		// A concurrent request may have created the player first.
		retry, retryErr := s.repo.GetByExternalID(ctx, nil, ident.ExternalID)
		if retryErr == nil {
			return results.SuccessResult[*playerdb.Player, error](retry), nil
		}
		return results.OperationResult[*playerdb.Player, error]{}, createErr
	}

	return results.SuccessResult[*playerdb.Player, error](player), nil
}
