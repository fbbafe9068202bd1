package jwthelper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(testKey, 42, "session-1", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testKey, token)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "session-1", claims.SessionID())
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := GenerateToken(testKey, 1, "session-1", time.Hour)
	require.NoError(t, err)

	expired, err := GenerateToken(testKey, 1, "session-1", -time.Minute)
	require.NoError(t, err)

	noSession, err := GenerateToken(testKey, 1, "", time.Hour)
	require.NoError(t, err)

	foreignIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "1",
		ID:        "session-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testKey)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  issuer,
		Subject: "1",
		ID:      "session-1",
	}).SignedString(testKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		key   []byte
		token string
	}{
		{name: "wrong key", key: []byte("another-key-another-key-another!"), token: valid},
		{name: "expired", key: testKey, token: expired},
		{name: "missing session id", key: testKey, token: noSession},
		{name: "foreign issuer", key: testKey, token: foreignIssuer},
		{name: "no expiry", key: testKey, token: noExpiry},
		{name: "garbage", key: testKey, token: "not-a-token"},
		{name: "tampered", key: testKey, token: valid + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.key, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestClaims_UserIDRejectsBadSubject(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}

	_, err := claims.UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)
}
