// Package seed loads reference data and demo accounts into a fresh database.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/database"
	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/repository"
	"github.com/sidago/crm-api/internal/utils"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password123"

var (
	Timezones = []model.Lookup{
		{ID: 1, Label: "1 - EST"},
		{ID: 2, Label: "2 - CST"},
		{ID: 3, Label: "3 - MST"},
		{ID: 4, Label: "4 - PST"},
	}
	LeadTypes = []model.Lookup{
		{ID: 1, Label: "Hot"},
		{ID: 2, Label: "General"},
	}
	ContactTypes = []model.Lookup{
		{ID: 1, Label: "Validated"},
		{ID: 2, Label: "Prospecting"},
	}
)

type demoUser struct {
	username string
	role     model.RoleName
}

func (d demoUser) email() string { return d.username + "@example.com" }

// demoUsers are three accounts per role: admin1..3, backoffice1..3, agent1..3.
func demoUsers() []demoUser {
	var out []demoUser
	for _, role := range model.AllRoles {
		for i := 1; i <= 3; i++ {
			out = append(out, demoUser{username: fmt.Sprintf("%s%d", role, i), role: role})
		}
	}
	return out
}

// Seeder inserts reference rows and demo accounts. Every step skips rows
// that already exist.
type Seeder struct {
	db      *sql.DB
	users   *repository.UserRepo
	lookups *repository.LookupRepo
	cost    int
	log     *zap.Logger
}

// New returns a Seeder hashing demo passwords at bcryptCost.
func New(db *sql.DB, bcryptCost int, log *zap.Logger) *Seeder {
	return &Seeder{
		db:      db,
		users:   repository.NewUserRepo(db),
		lookups: repository.NewLookupRepo(db),
		cost:    bcryptCost,
		log:     log,
	}
}

// Reference inserts the roles and the lookup rows. Existing rows are left
// alone so it is safe to run on every start.
func (s *Seeder) Reference(ctx context.Context) error {
	return database.WithinTx(ctx, s.db, func(ctx context.Context) error {
		for _, role := range model.AllRoles {
			if err := s.users.EnsureRole(ctx, role); err != nil {
				return fmt.Errorf("seed role %s: %w", role, err)
			}
		}
		sets := []struct {
			table model.LookupTable
			rows  []model.Lookup
		}{
			{model.TimezoneTable, Timezones},
			{model.LeadTypeTable, LeadTypes},
			{model.ContactTypeTable, ContactTypes},
		}
		for _, set := range sets {
			for _, row := range set.rows {
				if err := s.lookups.Ensure(ctx, set.table, row); err != nil {
					return fmt.Errorf("seed %s %q: %w", set.table, row.Label, err)
				}
			}
		}
		return nil
	})
}

// DemoUsers creates the demo accounts that do not exist yet, each with
// DemoPassword and one role.
func (s *Seeder) DemoUsers(ctx context.Context) error {
	hash, err := utils.HashPassword(DemoPassword, s.cost)
	if err != nil {
		return err
	}
	created := 0
	for _, d := range demoUsers() {
		ok, err := s.ensureUser(ctx, d, hash)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", d.username, err)
		}
		if ok {
			created++
		}
	}
	s.log.Info("demo users seeded", zap.Int("created", created))
	return nil
}

// ensureUser reports whether the account was created.
func (s *Seeder) ensureUser(ctx context.Context, d demoUser, hash string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, d.email())
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	err = database.WithinTx(ctx, s.db, func(ctx context.Context) error {
		u := model.User{Email: d.email(), Username: d.username, PasswordHash: hash}
		if err := s.users.Create(ctx, &u); err != nil {
			return err
		}
		return s.users.AssignRole(ctx, u.ID, d.role)
	})
	return err == nil, err
}
