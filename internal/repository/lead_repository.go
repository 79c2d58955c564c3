package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/model"
)

// LeadRepo reads leads joined with their company, agent and lookup labels.
type LeadRepo struct{ db *sql.DB }

// NewLeadRepo returns a LeadRepo on db.
func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{db: db} }

const leadSelect = `SELECT l.id, l.company_id, l.user_id, l.contact_type_id, l.lead_type_id,
	l.full_name, l.role, l.phone, l.email, l.others_contacts, l.assigned_to,
	l.follow_up_date, l.date_become_hot, l.created_at, l.last_modified,
	c.name, c.symbol, u.username, lt.label, ct.label
	FROM leads l
	JOIN companies c ON c.id = l.company_id
	JOIN contact_types ct ON ct.id = l.contact_type_id
	LEFT JOIN lead_types lt ON lt.id = l.lead_type_id
	LEFT JOIN users u ON u.id = l.user_id`

func scanLead(s rowScanner, l *model.Lead) error {
	return s.Scan(&l.ID, &l.CompanyID, &l.UserID, &l.ContactTypeID, &l.LeadTypeID,
		&l.FullName, &l.Role, &l.Phone, &l.Email, &l.OthersContacts, &l.AssignedTo,
		&l.FollowUpDate, &l.DateBecomeHot, &l.CreatedAt, &l.LastModified,
		&l.CompanyName, &l.CompanySymbol, &l.AgentName, &l.LeadType, &l.ContactType)
}

// Create inserts l and reloads it with the joined labels.
func (r *LeadRepo) Create(ctx context.Context, l *model.Lead) error {
	res, err := database.Executor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO leads (company_id, user_id, contact_type_id, lead_type_id, full_name, role, phone, email,
		   others_contacts, assigned_to, follow_up_date, date_become_hot)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.CompanyID, l.UserID, l.ContactTypeID, l.LeadTypeID, l.FullName, l.Role, l.Phone, l.Email,
		l.OthersContacts, l.AssignedTo, l.FollowUpDate, l.DateBecomeHot)
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
	*l = created
	return nil
}

// Update writes every column of l and reloads it.
func (r *LeadRepo) Update(ctx context.Context, l *model.Lead) error {
	_, err := database.Executor(ctx, r.db).ExecContext(ctx,
		`UPDATE leads SET company_id = ?, user_id = ?, contact_type_id = ?, lead_type_id = ?, full_name = ?,
		   role = ?, phone = ?, email = ?, others_contacts = ?, assigned_to = ?, follow_up_date = ?,
		   date_become_hot = ?, last_modified = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		l.CompanyID, l.UserID, l.ContactTypeID, l.LeadTypeID, l.FullName,
		l.Role, l.Phone, l.Email, l.OthersContacts, l.AssignedTo, l.FollowUpDate,
		l.DateBecomeHot, l.ID)
	if err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, l.ID)
	if err != nil {
		return err
	}
	*l = updated
	return nil
}

func (r *LeadRepo) GetByID(ctx context.Context, id uint64) (model.Lead, error) {
	var l model.Lead
	err := scanLead(database.Executor(ctx, r.db).QueryRowContext(ctx, leadSelect+" WHERE l.id = ?", id), &l)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Lead{}, ErrNotFound
	}
	return l, err
}

// List returns every lead ordered by id.
func (r *LeadRepo) List(ctx context.Context) ([]model.Lead, error) {
	return r.list(ctx, leadSelect+" ORDER BY l.id")
}

// ListByAgent returns the leads assigned to agent userID.
func (r *LeadRepo) ListByAgent(ctx context.Context, userID uint64) ([]model.Lead, error) {
	return r.list(ctx, leadSelect+" WHERE l.user_id = ? ORDER BY l.id", userID)
}

func (r *LeadRepo) list(ctx context.Context, q string, args ...any) ([]model.Lead, error) {
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Lead{}
	for rows.Next() {
		var l model.Lead
		if err := scanLead(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
