package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/export"
	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/queue"
	"github.com/sidago/crm-api/internal/repository"
)

// LeadStore persists leads.
type LeadStore interface {
	Create(ctx context.Context, l *model.Lead) error
	Update(ctx context.Context, l *model.Lead) error
	GetByID(ctx context.Context, id uint64) (model.Lead, error)
	List(ctx context.Context) ([]model.Lead, error)
	ListByAgent(ctx context.Context, userID uint64) ([]model.Lead, error)
}

// AgentStore resolves the user a lead is assigned to.
type AgentStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// defaultTimezoneID is given to companies created implicitly from a lead.
const defaultTimezoneID uint64 = 1

// LeadInput creates a lead. CompanyID is required unless implicit company
// creation is enabled, in which case Company (a name) may be given instead.
type LeadInput struct {
	CompanyID      *uint64
	Company        string
	AgentID        *uint64
	ContactTypeID  uint64
	LeadTypeID     *uint64
	FullName       string
	Role           *string
	Phone          *string
	Email          *string
	OthersContacts *string
	AssignedTo     *string
	FollowUpDate   *time.Time
	DateBecomeHot  *time.Time
}

// LeadUpdate changes only the non-nil fields.
type LeadUpdate struct {
	CompanyID      *uint64
	Company        *string
	AgentID        *uint64
	ContactTypeID  *uint64
	LeadTypeID     *uint64
	FullName       *string
	Role           *string
	Phone          *string
	Email          *string
	OthersContacts *string
	AssignedTo     *string
	FollowUpDate   *time.Time
	DateBecomeHot  *time.Time
}

// LeadService manages leads and, when enabled, creates the company a
// lead names if it does not exist yet.
type LeadService struct {
	tx        TxRunner
	leads     LeadStore
	companies CompanyStore
	agents    AgentStore
	lookups   LookupStore
	events    queue.Publisher
	log       *zap.Logger

	// createCompanyIfMissing enables resolving a lead's company by name and
	// creating it when absent.
	createCompanyIfMissing bool
}

// NewLeadService returns a LeadService. createCompanyIfMissing enables implicit
// company creation.
func NewLeadService(tx TxRunner, leads LeadStore, companies CompanyStore, agents AgentStore, lookups LookupStore,
	events queue.Publisher, log *zap.Logger, createCompanyIfMissing bool) *LeadService {
	return &LeadService{
		tx:                     tx,
		leads:                  leads,
		companies:              companies,
		agents:                 agents,
		lookups:                lookups,
		events:                 events,
		log:                    log,
		createCompanyIfMissing: createCompanyIfMissing,
	}
}

func (s *LeadService) List(ctx context.Context) ([]model.Lead, error) {
	return s.leads.List(ctx)
}

func (s *LeadService) Get(ctx context.Context, id uint64) (model.Lead, error) {
	l, err := s.leads.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Lead{}, ErrLeadNotFound
	}
	return l, err
}

// Export renders every lead as an xlsx workbook.
func (s *LeadService) Export(ctx context.Context) ([]byte, error) {
	leads, err := s.leads.List(ctx)
	if err != nil {
		return nil, err
	}
	return export.Leads(leads)
}

// ListByAgent returns ErrLeadNotFound when the agent has no leads.
func (s *LeadService) ListByAgent(ctx context.Context, agentID uint64) ([]model.Lead, error) {
	leads, err := s.leads.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, ErrLeadNotFound
	}
	return leads, nil
}

// Create validates in and stores the lead.
func (s *LeadService) Create(ctx context.Context, in LeadInput, actor *model.User) (model.Lead, error) {
	l := model.Lead{
		UserID:         in.AgentID,
		ContactTypeID:  in.ContactTypeID,
		LeadTypeID:     in.LeadTypeID,
		FullName:       strings.TrimSpace(in.FullName),
		Role:           in.Role,
		Phone:          in.Phone,
		Email:          in.Email,
		OthersContacts: in.OthersContacts,
		AssignedTo:     in.AssignedTo,
		FollowUpDate:   in.FollowUpDate,
		DateBecomeHot:  in.DateBecomeHot,
	}
	if l.FullName == "" {
		return model.Lead{}, invalid("full_name", "is required")
	}
	if in.CompanyID == nil && (!s.createCompanyIfMissing || strings.TrimSpace(in.Company) == "") {
		return model.Lead{}, invalid("company_id", "is required")
	}

	var implicit *model.Company
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, &in.ContactTypeID, in.LeadTypeID, in.AgentID); err != nil {
			return err
		}
		if in.CompanyID != nil {
			if _, err := s.company(ctx, *in.CompanyID); err != nil {
				return err
			}
			l.CompanyID = *in.CompanyID
		} else {
			c, created, err := s.findOrCreateCompany(ctx, in.Company)
			if err != nil {
				return err
			}
			if created {
				implicit = &c
			}
			l.CompanyID = c.ID
		}
		return s.leads.Create(ctx, &l)
	})
	if err != nil {
		return model.Lead{}, err
	}
	if implicit != nil {
		publish(ctx, s.events, s.log, queue.NewEvent(queue.CompanyCreated, implicit.ID, implicit.Name, actorID(actor)))
	}
	publish(ctx, s.events, s.log, queue.NewEvent(queue.LeadCreated, l.ID, l.FullName, actorID(actor)))
	return l, nil
}

// Update applies the non-nil fields of in to lead id.
func (s *LeadService) Update(ctx context.Context, id uint64, in LeadUpdate, actor *model.User) (model.Lead, error) {
	if in.FullName != nil && strings.TrimSpace(*in.FullName) == "" {
		return model.Lead{}, invalid("full_name", "cannot be empty")
	}
	if in.Company != nil && !s.createCompanyIfMissing {
		return model.Lead{}, invalid("company", "is not accepted; use company_id")
	}

	var l model.Lead
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if l, err = s.Get(ctx, id); err != nil {
			return err
		}
		if err := s.checkRefs(ctx, in.ContactTypeID, in.LeadTypeID, in.AgentID); err != nil {
			return err
		}
		switch {
		case in.CompanyID != nil:
			if _, err := s.company(ctx, *in.CompanyID); err != nil {
				return err
			}
			l.CompanyID = *in.CompanyID
		case in.Company != nil && strings.TrimSpace(*in.Company) != "":
			c, _, err := s.findOrCreateCompany(ctx, *in.Company)
			if err != nil {
				return err
			}
			l.CompanyID = c.ID
		}
		applyLeadUpdate(&l, in)
		return s.leads.Update(ctx, &l)
	})
	if err != nil {
		return model.Lead{}, err
	}
	publish(ctx, s.events, s.log, queue.NewEvent(queue.LeadUpdated, l.ID, l.FullName, actorID(actor)))
	return l, nil
}

func applyLeadUpdate(l *model.Lead, in LeadUpdate) {
	if in.AgentID != nil {
		l.UserID = in.AgentID
	}
	if in.ContactTypeID != nil {
		l.ContactTypeID = *in.ContactTypeID
	}
	if in.LeadTypeID != nil {
		l.LeadTypeID = in.LeadTypeID
	}
	if in.FullName != nil {
		l.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Role != nil {
		l.Role = in.Role
	}
	if in.Phone != nil {
		l.Phone = in.Phone
	}
	if in.Email != nil {
		l.Email = in.Email
	}
	if in.OthersContacts != nil {
		l.OthersContacts = in.OthersContacts
	}
	if in.AssignedTo != nil {
		l.AssignedTo = in.AssignedTo
	}
	if in.FollowUpDate != nil {
		l.FollowUpDate = in.FollowUpDate
	}
	if in.DateBecomeHot != nil {
		l.DateBecomeHot = in.DateBecomeHot
	}
}

// checkRefs validates the optional references of a lead. A nil pointer is
// skipped.
func (s *LeadService) checkRefs(ctx context.Context, contactTypeID, leadTypeID, agentID *uint64) error {
	if contactTypeID != nil {
		ok, err := s.lookups.Exists(ctx, model.ContactTypeTable, *contactTypeID)
		if err != nil {
			return err
		}
		if !ok {
			return invalid("contact_type_id", "does not exist")
		}
	}
	if leadTypeID != nil {
		ok, err := s.lookups.Exists(ctx, model.LeadTypeTable, *leadTypeID)
		if err != nil {
			return err
		}
		if !ok {
			return invalid("lead_type_id", "does not exist")
		}
	}
	if agentID != nil {
		if _, err := s.agents.GetByID(ctx, *agentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("agent_id", "does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *LeadService) company(ctx context.Context, id uint64) (model.Company, error) {
	c, err := s.companies.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Company{}, ErrCompanyNotFound
	}
	return c, err
}

// findOrCreateCompany resolves name to a company, creating it when absent.
// The bool reports whether a company was created.
func (s *LeadService) findOrCreateCompany(ctx context.Context, name string) (model.Company, bool, error) {
	name = strings.TrimSpace(name)
	c, err := s.companies.GetByName(ctx, name)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.Company{}, false, err
	}
	tz := defaultTimezoneID
	c = model.Company{Name: name, Symbol: model.DeriveSymbol(name), TimezoneID: &tz}
	if err := s.companies.Create(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Company{}, false, ErrDuplicateName
		}
		return model.Company{}, false, err
	}
	s.log.Info("company created from lead", zap.Uint64("company_id", c.ID), zap.String("name", c.Name))
	return c, true, nil
}
