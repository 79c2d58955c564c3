package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/model"
)

// HistoryRepo appends to and reads `company_histories`. Rows are never
// updated.
type HistoryRepo struct{ db *sql.DB }

// NewHistoryRepo returns a HistoryRepo on db.
func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// Create inserts h. A zero ChangedAt is replaced by the current UTC time.
func (r *HistoryRepo) Create(ctx context.Context, h *model.CompanyHistory) error {
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now().UTC()
	}
	res, err := database.Executor(ctx, r.db).ExecContext(ctx,
		"INSERT INTO company_histories (company_id, user_id, history, changed_at) VALUES (?,?,?,?)",
		h.CompanyID, h.UserID, h.History, h.ChangedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// ListByCompany returns the history of one company, oldest first.
func (r *HistoryRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.CompanyHistory, error) {
	return r.list(ctx,
		"SELECT id, company_id, user_id, history, changed_at FROM company_histories WHERE company_id = ? ORDER BY changed_at, id",
		companyID)
}

// ListAll returns every history row ordered by company then time.
func (r *HistoryRepo) ListAll(ctx context.Context) ([]model.CompanyHistory, error) {
	return r.list(ctx,
		"SELECT id, company_id, user_id, history, changed_at FROM company_histories ORDER BY company_id, changed_at, id")
}

func (r *HistoryRepo) list(ctx context.Context, q string, args ...any) ([]model.CompanyHistory, error) {
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CompanyHistory{}
	for rows.Next() {
		var h model.CompanyHistory
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.UserID, &h.History, &h.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
