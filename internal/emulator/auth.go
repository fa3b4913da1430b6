package emulator

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"

	"annoctl/internal/config"
)

type AuthConfig struct {
	// JWTSecret, when set, makes the emulator verify HS256 signatures of JWT tokens.
	// Legacy "<secret>=<team_id>" tokens are accepted as is.
	JWTSecret string
}

type teamKey struct{}

func withTeam(ctx context.Context, teamID int) context.Context {
	return context.WithValue(ctx, teamKey{}, teamID)
}

func teamFromContext(ctx context.Context) (int, huma.StatusError) {
	if id, ok := ctx.Value(teamKey{}).(int); ok && id > 0 {
		return id, nil
	}
	return 0, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required", nil)
}

// requireTeam checks that the team id a request names is the caller's own.
func requireTeam(ctx context.Context, teamID int) (int, huma.StatusError) {
	own, err := teamFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if teamID != 0 && teamID != own {
		return 0, newAPIError(http.StatusForbidden, "forbidden", "token does not grant access to this team", map[string]any{"team_id": teamID})
	}
	return own, nil
}

func tokenFromHeader(authz string) string {
	authz = strings.TrimSpace(authz)
	if parts := strings.Fields(authz); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return authz
}

func verifyJWT(token, secret string) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.Parse(token, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	return err
}

func isJWT(token string) bool {
	return strings.Count(token, ".") == 2 && !strings.Contains(token, "=")
}

// newAuthMiddleware resolves the caller's team from the token and provisions the team
// on first sight. Paths outside basePath, such as object storage, are not checked.
func newAuthMiddleware(basePath string, cfg AuthConfig, store Store, log *slog.Logger) func(http.Handler) http.Handler {
	healthPath := path.Join(basePath, "health")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !strings.HasPrefix(req.URL.Path, basePath) || req.URL.Path == healthPath ||
				strings.HasPrefix(req.URL.Path, path.Join(basePath, "openapi")) {
				next.ServeHTTP(w, req)
				return
			}
			token := tokenFromHeader(req.Header.Get("Authorization"))
			if token == "" {
				respondStatusError(w, newAPIError(http.StatusUnauthorized, "unauthorized", "authentication required", nil))
				return
			}
			if cfg.JWTSecret != "" && isJWT(token) {
				if err := verifyJWT(token, cfg.JWTSecret); err != nil {
					respondStatusError(w, newAPIError(http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil))
					return
				}
			}
			teamID, err := config.Token(token).TeamID()
			if err != nil {
				respondStatusError(w, newAPIError(http.StatusUnauthorized, "invalid_credentials", err.Error(), nil))
				return
			}
			if err := store.EnsureTeam(req.Context(), teamID); err != nil {
				log.Error("provision team", "team_id", teamID, "err", err)
				respondStatusError(w, newAPIError(http.StatusInternalServerError, "internal_error", "internal error", nil))
				return
			}
			next.ServeHTTP(w, req.WithContext(withTeam(req.Context(), teamID)))
		})
	}
}

func respondStatusError(w http.ResponseWriter, err huma.StatusError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.GetStatus())
	_ = json.NewEncoder(w).Encode(err)
}
