package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/model"
)

const companySelect = `SELECT c.id, c.name, c.symbol, c.country, c.state, c.city, c.zip, c.website,
	c.timezone_id, tz.label,
	c.previous_name, c.backup_name, c.last_modified_time_name, c.last_modified_by_name,
	c.previous_symbol, c.backup_symbol, c.last_modified_time_symbol, c.last_modified_by_symbol,
	c.created_at
	FROM companies c LEFT JOIN timezones tz ON tz.id = c.timezone_id`

// CompanyRepo encapsulates all queries on `companies`.
type CompanyRepo struct{ db *sql.DB }

// NewCompanyRepo returns a CompanyRepo on db.
func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{db: db} }

func scanCompany(s rowScanner, c *model.Company) error {
	return s.Scan(&c.ID, &c.Name, &c.Symbol, &c.Country, &c.State, &c.City, &c.Zip, &c.Website,
		&c.TimezoneID, &c.TimezoneLabel,
		&c.PreviousName, &c.BackupName, &c.LastModifiedTimeName, &c.LastModifiedByName,
		&c.PreviousSymbol, &c.BackupSymbol, &c.LastModifiedTimeSymbol, &c.LastModifiedBySymbol,
		&c.CreatedAt)
}

// Create inserts a company and populates ID and CreatedAt. A name clash
// returns ErrDuplicate.
func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) error {
	ex := database.Executor(ctx, r.db)
	res, err := ex.ExecContext(ctx,
		`INSERT INTO companies (name, symbol, country, state, city, zip, website, timezone_id)
		 VALUES (?,?,?,?,?,?,?,?)`,
		c.Name, c.Symbol, c.Country, c.State, c.City, c.Zip, c.Website, c.TimezoneID)
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
	c.ID = uint64(id)
	return ex.QueryRowContext(ctx, "SELECT created_at FROM companies WHERE id = ?", c.ID).Scan(&c.CreatedAt)
}

// GetByID returns ErrNotFound when no company has the id.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (model.Company, error) {
	return r.getOne(ctx, companySelect+" WHERE c.id = ?", id)
}

// GetByName looks a company up by its exact name.
func (r *CompanyRepo) GetByName(ctx context.Context, name string) (model.Company, error) {
	return r.getOne(ctx, companySelect+" WHERE c.name = ? LIMIT 1", name)
}

func (r *CompanyRepo) getOne(ctx context.Context, q string, arg any) (model.Company, error) {
	var c model.Company
	if err := scanCompany(database.Executor(ctx, r.db).QueryRowContext(ctx, q, arg), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Company{}, ErrNotFound
		}
		return model.Company{}, err
	}
	return c, nil
}

// NameTaken reports whether another company (id != excludeID) already uses
// name. Pass 0 to check against every company.
func (r *CompanyRepo) NameTaken(ctx context.Context, name string, excludeID uint64) (bool, error) {
	var taken bool
	err := database.Executor(ctx, r.db).QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM companies WHERE name = ? AND id <> ?)", name, excludeID).Scan(&taken)
	return taken, err
}

// List returns all companies, newest first.
func (r *CompanyRepo) List(ctx context.Context) ([]model.Company, error) {
	rows, err := database.Executor(ctx, r.db).QueryContext(ctx,
		companySelect+" ORDER BY c.id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Company{}
	for rows.Next() {
		var c model.Company
		if err := scanCompany(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update writes every mutable column of c.
func (r *CompanyRepo) Update(ctx context.Context, c *model.Company) error {
	_, err := database.Executor(ctx, r.db).ExecContext(ctx,
		`UPDATE companies SET
		   name = ?, symbol = ?, country = ?, state = ?, city = ?, zip = ?, website = ?, timezone_id = ?,
		   previous_name = ?, backup_name = ?, last_modified_time_name = ?, last_modified_by_name = ?,
		   previous_symbol = ?, backup_symbol = ?, last_modified_time_symbol = ?, last_modified_by_symbol = ?
		 WHERE id = ?`,
		c.Name, c.Symbol, c.Country, c.State, c.City, c.Zip, c.Website, c.TimezoneID,
		c.PreviousName, c.BackupName, c.LastModifiedTimeName, c.LastModifiedByName,
		c.PreviousSymbol, c.BackupSymbol, c.LastModifiedTimeSymbol, c.LastModifiedBySymbol,
		c.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Delete removes a company together with its comments, histories and leads
// in one transaction, joining the caller's when there is one.
func (r *CompanyRepo) Delete(ctx context.Context, id uint64) error {
	return database.WithinTx(ctx, r.db, func(ctx context.Context) error {
		ex := database.Executor(ctx, r.db)
		for _, q := range []string{
			"DELETE FROM company_comments WHERE company_id = ?",
			"DELETE FROM company_histories WHERE company_id = ?",
			"DELETE FROM leads WHERE company_id = ?",
		} {
			if _, err := ex.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		res, err := ex.ExecContext(ctx, "DELETE FROM companies WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
