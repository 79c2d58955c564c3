package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/repository"
	"github.com/sidago/crm-api/internal/utils"
)

// UserStore is the credential store used by authentication.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// TokenStore is the session ledger.
type TokenStore interface {
	Create(ctx context.Context, t *model.UserToken) error
	GetByRefreshHash(ctx context.Context, hash string) (model.UserToken, error)
	GetByAccessHash(ctx context.Context, hash string) (model.UserToken, error)
	Rotate(ctx context.Context, id uint64, oldRefreshHash, accessHash, refreshHash string, expiresAt time.Time) error
	DeleteByAccessHash(ctx context.Context, hash string) error
}

// AuthResult is returned by Login and Refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         model.User
}

// AuthService issues, rotates, revokes and validates sessions. A session is
// a ledger row; its access token is valid only while the row exists.
type AuthService struct {
	users      UserStore
	tokens     TokenStore
	signer     *utils.Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        *zap.Logger
	now        func() time.Time
}

// NewAuthService returns an AuthService issuing tokens with the given lifetimes.
func NewAuthService(users UserStore, tokens TokenStore, signer *utils.Signer, accessTTL, refreshTTL time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		signer:     signer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
		now:        time.Now,
	}
}

// Login verifies the credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}

	access, refresh, err := s.mintPair(u.Email)
	if err != nil {
		return AuthResult{}, err
	}
	row := model.UserToken{
		UserID:           u.ID,
		AccessTokenHash:  utils.HashToken(access.Raw),
		RefreshTokenHash: utils.HashToken(refresh.Raw),
		ExpiresAt:        s.now().UTC().Add(s.refreshTTL),
	}
	if err := s.tokens.Create(ctx, &row); err != nil {
		return AuthResult{}, err
	}
	s.log.Info("user logged in", zap.Uint64("user_id", u.ID))
	return AuthResult{AccessToken: access.Raw, RefreshToken: refresh.Raw, User: u}, nil
}

// Logout deletes the session of accessToken. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	return s.tokens.DeleteByAccessHash(ctx, utils.HashToken(accessToken))
}

// Refresh exchanges a refresh token for a new pair. The ledger row is
// rewritten in place; the old refresh token stops working.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	oldHash := utils.HashToken(refreshToken)
	row, err := s.tokens.GetByRefreshHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, err
	}
	if row.Expired(s.now().UTC()) {
		return AuthResult{}, ErrRefreshTokenExpired
	}

	email, err := s.signer.Parse(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AuthResult{}, ErrRefreshTokenExpired
		}
		return AuthResult{}, ErrInvalidRefreshToken
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, err
	}
	if u.ID != row.UserID {
		return AuthResult{}, ErrInvalidRefreshToken
	}

	access, refresh, err := s.mintPair(u.Email)
	if err != nil {
		return AuthResult{}, err
	}
	err = s.tokens.Rotate(ctx, row.ID, oldHash,
		utils.HashToken(access.Raw), utils.HashToken(refresh.Raw), s.now().UTC().Add(s.refreshTTL))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// lost the race against another refresh of the same token
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, err
	}
	return AuthResult{AccessToken: access.Raw, RefreshToken: refresh.Raw, User: u}, nil
}

// Validate resolves an access token to its user. The token must verify,
// still be in the ledger and belong to an existing user.
func (s *AuthService) Validate(ctx context.Context, accessToken string) (model.User, error) {
	email, err := s.signer.Parse(accessToken)
	if err != nil {
		return model.User{}, ErrInvalidOrExpiredToken
	}
	row, err := s.tokens.GetByAccessHash(ctx, utils.HashToken(accessToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrTokenRevoked
		}
		return model.User{}, err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	if u.ID != row.UserID {
		return model.User{}, ErrTokenRevoked
	}
	return u, nil
}

func (s *AuthService) mintPair(email string) (access, refresh utils.Token, err error) {
	if access, err = s.signer.Mint(email, s.accessTTL); err != nil {
		return
	}
	refresh, err = s.signer.Mint(email, s.refreshTTL)
	return
}
