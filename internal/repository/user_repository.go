package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/model"
)

const userColumns = "u.id, u.email, u.username, u.password_hash, u.created_at"

// UserRepo stores users and their role grants.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a UserRepo on db.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// NormalizeEmail trims and lower-cases an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts the user and sets its ID. Duplicate emails return
// ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	res, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash) VALUES (?,?,?)",
		u.Email, u.Username, u.PasswordHash)
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
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user and its roles by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users u WHERE u.email=? LIMIT 1", NormalizeEmail(email))
}

// GetByID fetches a user and its roles by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users u WHERE u.id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
	var u model.User
	err := database.Executor(ctx, r.db).QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	u.Roles, err = r.RolesOf(ctx, u.ID)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// RolesOf returns the role names granted to userID, sorted by name.
func (r *UserRepo) RolesOf(ctx context.Context, userID uint64) ([]model.RoleName, error) {
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx,
		`SELECT r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ? ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []model.RoleName{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, model.RoleName(name))
	}
	return roles, rows.Err()
}

// ListByRole returns users holding role, ordered by id. Roles are not
// loaded for the returned users beyond the requested one.
func (r *UserRepo) ListByRole(ctx context.Context, role model.RoleName) ([]model.User, error) {
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx,
		`SELECT `+userColumns+` FROM users u
		 JOIN user_roles ur ON ur.user_id = u.id
		 JOIN roles r ON r.id = ur.role_id
		 WHERE r.name = ? ORDER BY u.id`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Roles = []model.RoleName{role}
		out = append(out, u)
	}
	return out, rows.Err()
}

// EnsureRole inserts the role when it does not exist yet.
func (r *UserRepo) EnsureRole(ctx context.Context, role model.RoleName) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	_, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"INSERT IGNORE INTO roles (name) VALUES (?)", string(role))
	return err
}

// AssignRole grants role to userID. Granting a role twice is a no-op; a
// known role missing from `roles` yields ErrNotFound.
func (r *UserRepo) AssignRole(ctx context.Context, userID uint64, role model.RoleName) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	res, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (user_id, role_id) SELECT ?, id FROM roles WHERE name = ?",
		userID, string(role))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// either already granted or the role does not exist
		var exists bool
		err := database.Executor(ctx, r.db).QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM roles WHERE name = ?)", string(role)).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}
