package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSigner(t *testing.T) {
	for _, alg := range []string{"", "HS256", "HS384", "HS512"} {
		_, err := NewSigner("secret", alg)
		assert.NoError(t, err, alg)
	}
	_, err := NewSigner("secret", "RS256")
	assert.Error(t, err)
	_, err = NewSigner("", "HS256")
	assert.Error(t, err)
}

func TestMintAndParse(t *testing.T) {
	s, err := NewSigner("secret", "HS384")
	require.NoError(t, err)

	tok, err := s.Mint("admin1@example.com", time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), tok.Exp, 2*time.Second)

	sub, err := s.Parse(tok.Raw)
	require.NoError(t, err)
	assert.Equal(t, "admin1@example.com", sub)
}

func TestMintIsUnique(t *testing.T) {
	s, err := NewSigner("secret", "HS256")
	require.NoError(t, err)
	a, err := s.Mint("a@example.com", time.Hour)
	require.NoError(t, err)
	b, err := s.Mint("a@example.com", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a.Raw, b.Raw)
}

func TestParseExpired(t *testing.T) {
	s, err := NewSigner("secret", "HS256")
	require.NoError(t, err)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := s.Mint("a@example.com", time.Hour)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Parse(tok.Raw)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired), "got %v", err)
}

func TestParseWrongSecret(t *testing.T) {
	a, _ := NewSigner("secret-a", "HS256")
	b, _ := NewSigner("secret-b", "HS256")
	tok, err := a.Mint("a@example.com", time.Hour)
	require.NoError(t, err)
	_, err = b.Parse(tok.Raw)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseWrongAlgorithm(t *testing.T) {
	a, _ := NewSigner("secret", "HS512")
	b, _ := NewSigner("secret", "HS256")
	tok, err := a.Mint("a@example.com", time.Hour)
	require.NoError(t, err)
	_, err = b.Parse(tok.Raw)
	assert.Error(t, err)
}

func TestParseMissingSubject(t *testing.T) {
	claims := jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	s, _ := NewSigner("secret", "HS256")
	_, err = s.Parse(raw)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestParseGarbage(t *testing.T) {
	s, _ := NewSigner("secret", "HS256")
	_, err := s.Parse("invalid.jwt.token")
	assert.Error(t, err)
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	assert.Len(t, h, 64)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)
	assert.NotEqual(t, h, HashToken("abd"))
}
