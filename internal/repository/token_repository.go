package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/model"
)

// TokenRepo persists the session ledger (`user_tokens`). Rows hold digests of
// the access and refresh token; deleting a row revokes the session.
type TokenRepo struct{ db *sql.DB }

// NewTokenRepo returns a TokenRepo on db.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

const tokenColumns = "id, user_id, access_token_hash, refresh_token_hash, expires_at, created_at"

// Create inserts a ledger row and sets its ID.
func (r *TokenRepo) Create(ctx context.Context, t *model.UserToken) error {
	res, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"INSERT INTO user_tokens (user_id, access_token_hash, refresh_token_hash, expires_at) VALUES (?,?,?,?)",
		t.UserID, t.AccessTokenHash, t.RefreshTokenHash, t.ExpiresAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByRefreshHash returns the session owning a refresh digest.
func (r *TokenRepo) GetByRefreshHash(ctx context.Context, hash string) (model.UserToken, error) {
	return r.getOne(ctx, "SELECT "+tokenColumns+" FROM user_tokens WHERE refresh_token_hash=? LIMIT 1", hash)
}

// GetByAccessHash returns the session owning an access digest.
func (r *TokenRepo) GetByAccessHash(ctx context.Context, hash string) (model.UserToken, error) {
	return r.getOne(ctx, "SELECT "+tokenColumns+" FROM user_tokens WHERE access_token_hash=? LIMIT 1", hash)
}

func (r *TokenRepo) getOne(ctx context.Context, q, hash string) (model.UserToken, error) {
	var t model.UserToken
	err := database.Executor(ctx, r.db).QueryRowContext(ctx, q, hash).
		Scan(&t.ID, &t.UserID, &t.AccessTokenHash, &t.RefreshTokenHash, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserToken{}, ErrNotFound
	}
	return t, err
}

// Rotate overwrites both digests of session id, but only while the row still
// carries oldRefreshHash. A concurrent rotation that already replaced it
// makes this call return ErrNotFound.
func (r *TokenRepo) Rotate(ctx context.Context, id uint64, oldRefreshHash, accessHash, refreshHash string, expiresAt time.Time) error {
	res, err := database.Executor(ctx, r.db).ExecContext(ctx,
		`UPDATE user_tokens
		 SET access_token_hash=?, refresh_token_hash=?, expires_at=?
		 WHERE id=? AND refresh_token_hash=?`,
		accessHash, refreshHash, expiresAt, id, oldRefreshHash)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByAccessHash removes the session of an access digest. Deleting an
// unknown digest is not an error.
func (r *TokenRepo) DeleteByAccessHash(ctx context.Context, hash string) error {
	_, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"DELETE FROM user_tokens WHERE access_token_hash=?", hash)
	return err
}
