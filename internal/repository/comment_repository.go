package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/model"
)

// CommentRepo stores rows of `company_comments`.
type CommentRepo struct{ db *sql.DB }

// NewCommentRepo returns a CommentRepo on db.
func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

const commentSelect = `SELECT c.id, c.company_id, c.user_id, u.username, c.comment, c.created_at
	FROM company_comments c LEFT JOIN users u ON u.id = c.user_id`

func scanComment(s rowScanner, c *model.CompanyComment) error {
	return s.Scan(&c.ID, &c.CompanyID, &c.UserID, &c.AuthorName, &c.Comment, &c.CreatedAt)
}

// Create inserts the comment and reloads it so CreatedAt and AuthorName are
// filled.
func (r *CommentRepo) Create(ctx context.Context, c *model.CompanyComment) error {
	res, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"INSERT INTO company_comments (company_id, user_id, comment) VALUES (?,?,?)",
		c.CompanyID, c.UserID, c.Comment)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*c = created
	return nil
}

// GetByID returns the comment with its author name, or ErrNotFound.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.CompanyComment, error) {
	var c model.CompanyComment
	err := scanComment(database.Executor(ctx, r.db).QueryRowContext(ctx, commentSelect+" WHERE c.id = ?", id), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CompanyComment{}, ErrNotFound
	}
	return c, err
}

// ListByCompany returns a company's comments, newest first.
func (r *CommentRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.CompanyComment, error) {
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx,
		commentSelect+" WHERE c.company_id = ? ORDER BY c.created_at DESC, c.id DESC", companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CompanyComment{}
	for rows.Next() {
		var c model.CompanyComment
		if err := scanComment(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateMessage replaces the text of comment id.
func (r *CommentRepo) UpdateMessage(ctx context.Context, id uint64, message string) error {
	_, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"UPDATE company_comments SET comment = ? WHERE id = ?", message, id)
	return err
}

func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"DELETE FROM company_comments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
