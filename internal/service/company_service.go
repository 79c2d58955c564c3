package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/queue"
	"github.com/sidago/crm-api/internal/repository"
)

// CompanyStore persists companies.
type CompanyStore interface {
	Create(ctx context.Context, c *model.Company) error
	GetByID(ctx context.Context, id uint64) (model.Company, error)
	GetByName(ctx context.Context, name string) (model.Company, error)
	NameTaken(ctx context.Context, name string, excludeID uint64) (bool, error)
	List(ctx context.Context) ([]model.Company, error)
	Update(ctx context.Context, c *model.Company) error
	Delete(ctx context.Context, id uint64) error
}

// HistoryStore appends and reads company change history.
type HistoryStore interface {
	Create(ctx context.Context, h *model.CompanyHistory) error
	ListByCompany(ctx context.Context, companyID uint64) ([]model.CompanyHistory, error)
	ListAll(ctx context.Context) ([]model.CompanyHistory, error)
}

// LookupStore checks ids against the reference tables.
type LookupStore interface {
	List(ctx context.Context, t model.LookupTable) ([]model.Lookup, error)
	Exists(ctx context.Context, t model.LookupTable, id uint64) (bool, error)
}

// CompanyInput is the full desired state of a company for create and
// update. Nil optional fields clear the column on update. An empty symbol
// is derived from the name.
type CompanyInput struct {
	Name       string
	Symbol     *string
	Country    *string
	State      *string
	City       *string
	Zip        *string
	Website    *string
	TimezoneID *uint64
}

// CompanyService manages companies and records every change to their
// fields as a history line in the same transaction.
type CompanyService struct {
	tx        TxRunner
	companies CompanyStore
	histories HistoryStore
	lookups   LookupStore
	events    queue.Publisher
	log       *zap.Logger
	now       func() time.Time
}

// NewCompanyService returns a CompanyService publishing to events.
func NewCompanyService(tx TxRunner, companies CompanyStore, histories HistoryStore, lookups LookupStore, events queue.Publisher, log *zap.Logger) *CompanyService {
	return &CompanyService{
		tx:        tx,
		companies: companies,
		histories: histories,
		lookups:   lookups,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// List returns every company with its history, newest company first.
func (s *CompanyService) List(ctx context.Context) ([]model.Company, error) {
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.histories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byCompany := make(map[uint64][]model.CompanyHistory)
	for _, h := range all {
		byCompany[h.CompanyID] = append(byCompany[h.CompanyID], h)
	}
	for i := range companies {
		companies[i].Histories = byCompany[companies[i].ID]
		if companies[i].Histories == nil {
			companies[i].Histories = []model.CompanyHistory{}
		}
	}
	return companies, nil
}

// Get returns one company with its history.
func (s *CompanyService) Get(ctx context.Context, id uint64) (model.Company, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return model.Company{}, err
	}
	if c.Histories, err = s.histories.ListByCompany(ctx, id); err != nil {
		return model.Company{}, err
	}
	return c, nil
}

// History returns the change log of a company, oldest entry first.
func (s *CompanyService) History(ctx context.Context, id uint64) ([]model.CompanyHistory, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	return s.histories.ListByCompany(ctx, id)
}

func (s *CompanyService) get(ctx context.Context, id uint64) (model.Company, error) {
	c, err := s.companies.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Company{}, ErrCompanyNotFound
	}
	return c, err
}

// Create inserts a company. Names are unique.
func (s *CompanyService) Create(ctx context.Context, in CompanyInput, actor *model.User) (model.Company, error) {
	next, err := s.prepare(ctx, in)
	if err != nil {
		return model.Company{}, err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		taken, err := s.companies.NameTaken(ctx, next.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}
		if err := s.companies.Create(ctx, &next); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateName
			}
			return err
		}
		next, err = s.companies.GetByID(ctx, next.ID)
		return err
	})
	if err != nil {
		return model.Company{}, err
	}
	publish(ctx, s.events, s.log, queue.NewEvent(queue.CompanyCreated, next.ID, next.Name, actorID(actor)))
	next.Histories = []model.CompanyHistory{}
	return next, nil
}

// Update replaces the company's fields with in. Every changed tracked field
// is recorded in a single history entry written in the same transaction as
// the update. An update that changes nothing writes nothing.
func (s *CompanyService) Update(ctx context.Context, id uint64, in CompanyInput, actor *model.User) (model.Company, error) {
	next, err := s.prepare(ctx, in)
	if err != nil {
		return model.Company{}, err
	}
	username := systemActor
	if actor != nil && actor.Username != "" {
		username = actor.Username
	}

	var (
		cur     model.Company
		summary string
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		cur = existing
		taken, err := s.companies.NameTaken(ctx, next.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		now := s.now().UTC()
		if cur.Name != next.Name {
			prev, backup := cur.Name, next.Name
			cur.PreviousName, cur.BackupName = &prev, &backup
			cur.LastModifiedTimeName, cur.LastModifiedByName = &now, &username
		}
		if cur.Symbol != next.Symbol {
			prev, backup := cur.Symbol, next.Symbol
			cur.PreviousSymbol, cur.BackupSymbol = &prev, &backup
			cur.LastModifiedTimeSymbol, cur.LastModifiedBySymbol = &now, &username
		}
		diffs := diffCompany(&cur, &next)
		if len(diffs) == 0 {
			return nil
		}

		if err := s.companies.Update(ctx, &cur); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateName
			}
			return err
		}
		summary = composeHistory(now, username, diffs)
		h := model.CompanyHistory{CompanyID: id, UserID: actorID(actor), History: summary, ChangedAt: now}
		if err := s.histories.Create(ctx, &h); err != nil {
			return err
		}
		cur, err = s.companies.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return model.Company{}, err
	}
	if summary != "" {
		ev := queue.NewEvent(queue.CompanyUpdated, cur.ID, cur.Name, actorID(actor))
		ev.Summary = summary
		publish(ctx, s.events, s.log, ev)
	}
	return cur, nil
}

// Delete removes a company with its comments, history and leads.
func (s *CompanyService) Delete(ctx context.Context, id uint64, actor *model.User) error {
	var name string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		name = c.Name
		if err := s.companies.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCompanyNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	publish(ctx, s.events, s.log, queue.NewEvent(queue.CompanyDeleted, id, name, actorID(actor)))
	return nil
}

// prepare validates in and turns it into the desired company state.
func (s *CompanyService) prepare(ctx context.Context, in CompanyInput) (model.Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Company{}, invalid("name", "is required")
	}
	symbol := model.DeriveSymbol(name)
	if in.Symbol != nil && strings.TrimSpace(*in.Symbol) != "" {
		symbol = strings.TrimSpace(*in.Symbol)
	}
	if in.TimezoneID != nil {
		ok, err := s.lookups.Exists(ctx, model.TimezoneTable, *in.TimezoneID)
		if err != nil {
			return model.Company{}, err
		}
		if !ok {
			return model.Company{}, invalid("timezone_id", "does not exist")
		}
	}
	return model.Company{
		Name:       name,
		Symbol:     symbol,
		Country:    in.Country,
		State:      in.State,
		City:       in.City,
		Zip:        in.Zip,
		Website:    in.Website,
		TimezoneID: in.TimezoneID,
	}, nil
}

func actorID(actor *model.User) *uint64 {
	if actor == nil {
		return nil
	}
	id := actor.ID
	return &id
}
