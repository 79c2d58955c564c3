package model

import "time"

// Lead is a contact at a company, optionally assigned to an agent. The
// trailing fields are labels joined from related tables by read queries.
type Lead struct {
	ID             uint64     // leads.id
	CompanyID      uint64     // leads.company_id
	UserID         *uint64    // leads.user_id (agent)
	ContactTypeID  uint64     // leads.contact_type_id
	LeadTypeID     *uint64    // leads.lead_type_id
	FullName       string     // leads.full_name
	Role           *string    // leads.role
	Phone          *string    // leads.phone
	Email          *string    // leads.email
	OthersContacts *string    // leads.others_contacts
	AssignedTo     *string    // leads.assigned_to
	FollowUpDate   *time.Time // leads.follow_up_date
	DateBecomeHot  *time.Time // leads.date_become_hot
	CreatedAt      time.Time  // leads.created_at
	LastModified   time.Time  // leads.last_modified

	CompanyName   string
	CompanySymbol string
	AgentName     *string
	LeadType      *string
	ContactType   string
}

// DisplayID is the human facing identifier "<company symbol>-<full name>".
func (l Lead) DisplayID() string {
	return l.CompanySymbol + "-" + l.FullName
}
