package helpers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-restaurant-printing/models"
)

var cashier = models.Staff{Uid: "u-1", Email: "caja@example.com", Name: "Caja", User_role: models.RoleCashier}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("s3cret", cashier)
	require.NoError(t, err)

	claims, msg := ValidateToken(token, "s3cret")
	require.Empty(t, msg)
	assert.Equal(t, "u-1", claims.Uid)
	assert.Equal(t, models.RoleCashier, claims.User_role)
}

func TestValidateTokenRejects(t *testing.T) {
	good, err := GenerateToken("s3cret", cashier)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SignedDetails{
		Uid:            "u-1",
		User_role:      models.RoleCashier,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SignedDetails{
		User_role:      "OWNER",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := map[string]struct{ token, secret string }{
		"wrong secret": {good, "other"},
		"no secret":    {good, ""},
		"garbage":      {"not-a-token", "s3cret"},
		"expired":      {expired, "s3cret"},
		"unknown role": {badRole, "s3cret"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			claims, msg := ValidateToken(tc.token, tc.secret)
			assert.Nil(t, claims)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestVerifyRelayToken(t *testing.T) {
	hash, err := HashRelayToken("relay-token")
	require.NoError(t, err)

	tests := map[string]struct {
		presented, token, hash string
		want                   bool
	}{
		"raw match":     {"relay-token", "relay-token", "", true},
		"raw mismatch":  {"nope", "relay-token", "", false},
		"missing":       {"", "relay-token", "", false},
		"unconfigured":  {"relay-token", "", "", false},
		"hash match":    {"relay-token", "", hash, true},
		"hash wins":     {"relay-token", "other", hash, true},
		"hash mismatch": {"nope", "nope", hash, false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ok, msg := VerifyRelayToken(tc.presented, tc.token, tc.hash)
			assert.Equal(t, tc.want, ok)
			assert.Equal(t, tc.want, msg == "")
		})
	}
}

func TestLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "print-service", "warn")

	logger.Info("ticket_printed")
	logger.Warn("printer_unavailable", "order", "ORD-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "print-service", line["service"])
	assert.Equal(t, "printer_unavailable", line["msg"])
	assert.Equal(t, "ORD-1", line["order"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
