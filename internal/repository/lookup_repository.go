package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/model"
)

// LookupRepo serves the three reference tables (timezones, lead_types,
// contact_types), which share the (id, label) shape.
type LookupRepo struct{ db *sql.DB }

// NewLookupRepo returns a LookupRepo on db.
func NewLookupRepo(db *sql.DB) *LookupRepo { return &LookupRepo{db: db} }

// table guards the table name interpolated into queries.
func table(t model.LookupTable) (string, error) {
	switch t {
	case model.TimezoneTable, model.LeadTypeTable, model.ContactTypeTable:
		return string(t), nil
	}
	return "", fmt.Errorf("unknown lookup table %q", t)
}

// List returns all rows of t ordered by id.
func (r *LookupRepo) List(ctx context.Context, t model.LookupTable) ([]model.Lookup, error) {
	name, err := table(t)
	if err != nil {
		return nil, err
	}
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, "SELECT id, label FROM "+name+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Lookup{}
	for rows.Next() {
		var l model.Lookup
		if err := rows.Scan(&l.ID, &l.Label); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Exists reports whether id is a row of t.
func (r *LookupRepo) Exists(ctx context.Context, t model.LookupTable, id uint64) (bool, error) {
	name, err := table(t)
	if err != nil {
		return false, err
	}
	var ok bool
	err = database.Executor(ctx, r.db).QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+name+" WHERE id = ?)", id).Scan(&ok)
	return ok, err
}

// Ensure inserts (id, label) unless a row with that id or label exists.
func (r *LookupRepo) Ensure(ctx context.Context, t model.LookupTable, l model.Lookup) error {
	name, err := table(t)
	if err != nil {
		return err
	}
	_, err = database.Executor(ctx, r.db).ExecContext(ctx,
		"INSERT IGNORE INTO "+name+" (id, label) VALUES (?, ?)", l.ID, l.Label)
	return err
}
