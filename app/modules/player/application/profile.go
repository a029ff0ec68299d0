package playerservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// ProfileUpdate carries the PATCH /players/me fields. Nil means "leave
// unchanged"; an empty string clears the nullable column.
type ProfileUpdate struct {
	Username *string
	Name     *string
	Email    *string
	Handicap *float64
	Gender   *string
}

const searchLimit = 20

// GetByID fetches a player by internal id.
func (s *PlayerService) GetByID(ctx context.Context, id int64) (*playerdb.Player, error) {
	result, err := withTelemetry(s, ctx, "GetPlayerByID", fmt.Sprintf("%d", id), func(ctx context.Context) (results.OperationResult[*playerdb.Player, error], error) {
		player, repoErr := s.repo.GetByID(ctx, nil, id)
		if repoErr != nil {
			if errors.Is(repoErr, playerdb.ErrNotFound) {
				return results.FailureResult[*playerdb.Player, error](types.NewNotFoundError("Player not found")), nil
			}
			return results.OperationResult[*playerdb.Player, error]{}, repoErr
		}
		return results.SuccessResult[*playerdb.Player, error](player), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// GetByExternalID fetches a player by external identity.
func (s *PlayerService) GetByExternalID(ctx context.Context, externalID string) (*playerdb.Player, error) {
	result, err := withTelemetry(s, ctx, "GetPlayerByExternalID", externalID, func(ctx context.Context) (results.OperationResult[*playerdb.Player, error], error) {
		player, repoErr := s.repo.GetByExternalID(ctx, nil, externalID)
		if repoErr != nil {
			if errors.Is(repoErr, playerdb.ErrNotFound) {
				return results.FailureResult[*playerdb.Player, error](types.NewNotFoundError("Player not found")), nil
			}
			return results.OperationResult[*playerdb.Player, error]{}, repoErr
		}
		return results.SuccessResult[*playerdb.Player, error](player), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// UpdateProfile applies a partial profile update for the player.
func (s *PlayerService) UpdateProfile(ctx context.Context, playerID int64, update ProfileUpdate) (*playerdb.Player, error) {
	result, err := withTelemetry(s, ctx, "UpdateProfile", fmt.Sprintf("%d", playerID), func(ctx context.Context) (results.OperationResult[*playerdb.Player, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*playerdb.Player, error], error) {
			return s.updateProfile(ctx, db, playerID, update)
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

func (s *PlayerService) updateProfile(ctx context.Context, db bun.IDB, playerID int64, update ProfileUpdate) (results.OperationResult[*playerdb.Player, error], error) {
	fail := func(err error) (results.OperationResult[*playerdb.Player, error], error) {
		return results.FailureResult[*playerdb.Player, error](err), nil
	}

	player, err := s.repo.GetByID(ctx, db, playerID)
	if err != nil {
		if errors.Is(err, playerdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Player not found"))
		}
		return results.OperationResult[*playerdb.Player, error]{}, err
	}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if username == "" {
			player.Username = nil
		} else {
			taken, existsErr := s.repo.ExistsWithUsername(ctx, db, username, playerID)
			if existsErr != nil {
				return results.OperationResult[*playerdb.Player, error]{}, existsErr
			}
			if taken {
				return fail(types.NewConflictError("Username already taken"))
			}
			player.Username = &username
		}
	}

	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if email == "" {
			player.Email = nil
		} else {
			if !strings.Contains(email, "@") {
				return fail(types.NewValidationError("Invalid email"))
			}
			taken, existsErr := s.repo.ExistsWithEmail(ctx, db, email, playerID)
			if existsErr != nil {
				return results.OperationResult[*playerdb.Player, error]{}, existsErr
			}
			if taken {
				return fail(types.NewConflictError("Email already taken"))
			}
			player.Email = &email
		}
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			player.Name = nil
		} else {
			player.Name = &name
		}
	}

	if update.Handicap != nil {
		player.Handicap = update.Handicap
	}

	if update.Gender != nil {
		gender := strings.TrimSpace(*update.Gender)
		if gender == "" {
			player.Gender = nil
		} else {
			player.Gender = &gender
		}
	}

	if err := s.repo.Update(ctx, db, player); err != nil {
		if errors.Is(err, playerdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Player not found"))
		}
		return results.OperationResult[*playerdb.Player, error]{}, err
	}

	return results.SuccessResult[*playerdb.Player, error](player), nil
}

// SearchPlayers finds players whose username, name, or email starts with the
// query, excluding the caller.
func (s *PlayerService) SearchPlayers(ctx context.Context, callerID int64, query string) ([]playerdb.Player, error) {
	result, err := withTelemetry(s, ctx, "SearchPlayers", query, func(ctx context.Context) (results.OperationResult[[]playerdb.Player, error], error) {
		trimmed := strings.TrimSpace(query)
		if len(trimmed) < 2 {
			return results.FailureResult[[]playerdb.Player, error](types.NewValidationError("Search query must be at least 2 characters")), nil
		}
		players, repoErr := s.repo.Search(ctx, nil, trimmed, callerID, searchLimit)
		if repoErr != nil {
			return results.OperationResult[[]playerdb.Player, error]{}, repoErr
		}
		return results.SuccessResult[[]playerdb.Player, error](players), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}
