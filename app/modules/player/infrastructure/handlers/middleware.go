package playerhandlers

import (
	"log/slog"
	"net/http"
	"strings"

	playerservice "github.com/fairway-collective/links-backend/app/modules/player/application"
	playerjwt "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/jwt"
	"github.com/fairway-collective/links-backend/app/shared/httputils"
	"github.com/fairway-collective/links-backend/app/shared/identity"
	"github.com/fairway-collective/links-backend/app/shared/observability/attr"
)

const (
	devUserHeader     = "X-User-Id"
	devFallbackUserID = "dev-user"
)

// IdentityConfig controls how incoming requests are authenticated.
type IdentityConfig struct {
	// DevMode accepts the X-User-Id header and falls back to a fixed
	// development identity when no credentials are present.
	DevMode bool
}

// IdentityMiddleware authenticates the request, auto-provisions the player
// row, and attaches the player to the request context.
func IdentityMiddleware(verifier playerjwt.Verifier, service playerservice.Service, cfg IdentityConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ident, ok := resolveIdentity(r, verifier, cfg, logger)
			if !ok {
				httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
				return
			}

			player, err := service.EnsurePlayer(ctx, ident)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to resolve player identity",
					attr.ExtractCorrelationID(ctx),
					attr.String("external_id", ident.ExternalID),
					attr.Error(err),
				)
				httputils.RespondJSON(w, http.StatusInternalServerError, httputils.ErrorResponse{Detail: "Internal server error"})
				return
			}

			ctx = identity.WithPlayer(ctx, &identity.Player{
				ID:         player.ID,
				ExternalID: player.ExternalID,
				Username:   player.Username,
				Email:      player.Email,
				Name:       player.Name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveIdentity(r *http.Request, verifier playerjwt.Verifier, cfg IdentityConfig, logger *slog.Logger) (playerservice.Identity, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return playerservice.Identity{}, false
		}
		claims, err := verifier.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			logger.WarnContext(r.Context(), "Rejected bearer token", attr.Error(err))
			return playerservice.Identity{}, false
		}
		ident := playerservice.Identity{ExternalID: claims.Subject}
		if claims.Email != "" {
			email := claims.Email
			ident.Email = &email
		}
		if claims.Name != "" {
			name := claims.Name
			ident.Name = &name
		}
		return ident, true
	}

	if cfg.DevMode {
		if devID := r.Header.Get(devUserHeader); devID != "" {
			return playerservice.Identity{ExternalID: devID}, true
		}
		return playerservice.Identity{ExternalID: devFallbackUserID}, true
	}

	return playerservice.Identity{}, false
}
