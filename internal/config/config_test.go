package config

import (
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annoctl/internal/domain"
)

func TestTokenTeamIDLegacy(t *testing.T) {
	id, err := Token("abc123=42").TeamID()
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	// secrets may themselves contain '='; the team id follows the last one
	id, err = Token("ab=c=7").TeamID()
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	for _, bad := range []string{"", "abc", "abc=", "abc=x", "abc=-1"} {
		_, err := Token(bad).TeamID()
		assert.ErrorIs(t, err, domain.ErrPrecondition, bad)
	}
}

func TestTokenTeamIDJWT(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"team_id": 9}).SignedString([]byte("k"))
	require.NoError(t, err)
	id, err := Token(signed).TeamID()
	require.NoError(t, err)
	assert.Equal(t, 9, id)

	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = Token(signed).TeamID()
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestTokenRedacted(t *testing.T) {
	assert.Equal(t, "abc***=42", Token("abcdefgh=42").Redacted())
	assert.Equal(t, "***", Token("a=1").Redacted())
}

func TestSaveAndLoad(t *testing.T) {
	path := Path(t.TempDir())
	cfg := Default()
	cfg.Token = "secret=3"
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Token("secret=3"), got.Token)
	assert.Equal(t, DefaultMainEndpoint, got.MainEndpoint)
	assert.True(t, got.SSLVerify)
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")
	_, err := Load(path)
	require.Error(t, err)
	cfg, err := LoadOptional(path)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestFromYAMLValidates(t *testing.T) {
	_, err := FromYAML([]byte("main_endpoint: http://localhost:8080\n"))
	require.Error(t, err)

	cfg, err := FromYAML([]byte("token: s=5\nmain_endpoint: http://localhost:8080\nssl_verify: false\n"))
	require.NoError(t, err)
	assert.False(t, cfg.SSLVerify)
	assert.Equal(t, "info", cfg.LogLevel)
}
