package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 digests stored in the token ledger
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMissingSubject is returned by Parse when a valid token has no "sub".
var ErrMissingSubject = errors.New("token has no subject")

// Token is a signed JWT along with its expiry.
type Token struct {
	Raw string    // the serialized JWT string
	Exp time.Time // the UTC expiration time
}

// Signer mints and verifies HMAC JWTs with a single secret and algorithm.
// Access and refresh tokens share the same claim set:
// sub (user email), exp, iat and a random jti.
type Signer struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

// NewSigner accepts HS256, HS384 or HS512.
func NewSigner(secret, alg string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	var m *jwt.SigningMethodHMAC
	switch alg {
	case "", "HS256":
		m = jwt.SigningMethodHS256
	case "HS384":
		m = jwt.SigningMethodHS384
	case "HS512":
		m = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm %q", alg)
	}
	return &Signer{secret: []byte(secret), method: m, now: time.Now}, nil
}

// Mint signs a token for subject that expires after ttl.
func (s *Signer) Mint(subject string, ttl time.Duration) (Token, error) {
	now := s.now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": exp.Unix(),
		"iat": now.Unix(),
		"jti": uuid.NewString(), // two tokens minted in the same second still differ
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Raw: signed, Exp: exp}, nil
}

// Parse verifies signature and expiry and returns the subject claim.
func (s *Signer) Parse(raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrMissingSubject
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}

// HashToken returns the SHA-256 hex digest of a raw token. Only digests are
// written to the ledger.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
