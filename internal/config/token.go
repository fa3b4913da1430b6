package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"annoctl/internal/domain"
)

// Token is the platform SDK token. All knowledge of how a team id is encoded in it lives here.
type Token string

func (t Token) String() string { return string(t) }

// Redacted is safe to log.
func (t Token) Redacted() string {
	s := string(t)
	if len(s) <= 6 {
		return "***"
	}
	return s[:3] + "***" + s[len(s)-3:]
}

// TeamID extracts the team id. Legacy tokens are "<secret>=<team_id>"; newer tokens are
// JWTs carrying a team_id claim. The signature is not verified here, the backend does that.
func (t Token) TeamID() (int, error) {
	s := strings.TrimSpace(string(t))
	if s == "" {
		return 0, &domain.PreconditionError{Message: "token is empty"}
	}
	if strings.Count(s, ".") == 2 && !strings.Contains(s, "=") {
		return jwtTeamID(s)
	}
	i := strings.LastIndex(s, "=")
	if i < 0 || i == len(s)-1 {
		return 0, &domain.PreconditionError{Message: "invalid token: missing team id"}
	}
	id, err := strconv.Atoi(s[i+1:])
	if err != nil || id <= 0 {
		return 0, &domain.PreconditionError{Message: fmt.Sprintf("invalid token: bad team id %q", s[i+1:])}
	}
	return id, nil
}

func jwtTeamID(s string) (int, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s, claims); err != nil {
		return 0, &domain.PreconditionError{Message: fmt.Sprintf("invalid token: %v", err)}
	}
	switch v := claims["team_id"].(type) {
	case float64:
		if v > 0 {
			return int(v), nil
		}
	case string:
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, &domain.PreconditionError{Message: "invalid token: no team_id claim"}
}
