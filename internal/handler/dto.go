package handler

import (
	"time"

	"github.com/sidago/crm-api/internal/model"
)

const dateLayout = "2006-01-02"

type userSummary struct {
	ID       uint64   `json:"id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func toUserSummary(u model.User) userSummary {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return userSummary{ID: u.ID, Email: u.Email, Username: u.Username, Roles: roles}
}

type authResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         userSummary `json:"user"`
}

type lookupResponse struct {
	ID    uint64 `json:"id"`
	Label string `json:"label"`
}

type companyResponse struct {
	ID                     uint64     `json:"id"`
	Name                   string     `json:"name"`
	Symbol                 string     `json:"symbol"`
	Country                *string    `json:"country"`
	State                  *string    `json:"state"`
	City                   *string    `json:"city"`
	Zip                    *string    `json:"zip"`
	Website                *string    `json:"website"`
	TimezoneID             *uint64    `json:"timezone_id"`
	Timezone               *string    `json:"timezone"`
	PreviousName           *string    `json:"previous_name"`
	BackupName             *string    `json:"backup_name"`
	LastModifiedTimeName   *time.Time `json:"last_modified_time_name"`
	LastModifiedByName     *string    `json:"last_modified_by_name"`
	PreviousSymbol         *string    `json:"previous_symbol"`
	BackupSymbol           *string    `json:"backup_symbol"`
	LastModifiedTimeSymbol *time.Time `json:"last_modified_time_symbol"`
	LastModifiedBySymbol   *string    `json:"last_modified_by_symbol"`
	CreatedAt              time.Time  `json:"created_at"`
	Histories              []string   `json:"histories"`
}

func toCompanyResponse(c model.Company) companyResponse {
	hist := make([]string, 0, len(c.Histories))
	for _, h := range c.Histories {
		hist = append(hist, h.History)
	}
	return companyResponse{
		ID:                     c.ID,
		Name:                   c.Name,
		Symbol:                 c.Symbol,
		Country:                c.Country,
		State:                  c.State,
		City:                   c.City,
		Zip:                    c.Zip,
		Website:                c.Website,
		TimezoneID:             c.TimezoneID,
		Timezone:               c.TimezoneLabel,
		PreviousName:           c.PreviousName,
		BackupName:             c.BackupName,
		LastModifiedTimeName:   c.LastModifiedTimeName,
		LastModifiedByName:     c.LastModifiedByName,
		PreviousSymbol:         c.PreviousSymbol,
		BackupSymbol:           c.BackupSymbol,
		LastModifiedTimeSymbol: c.LastModifiedTimeSymbol,
		LastModifiedBySymbol:   c.LastModifiedBySymbol,
		CreatedAt:              c.CreatedAt,
		Histories:              hist,
	}
}

type historyResponse struct {
	ID        uint64    `json:"id"`
	CompanyID uint64    `json:"company_id"`
	UserID    *uint64   `json:"user_id"`
	History   string    `json:"history"`
	ChangedAt time.Time `json:"changed_at"`
}

type commentAuthor struct {
	ID   *uint64 `json:"id"`
	Name string  `json:"name"`
}

type commentResponse struct {
	ID        uint64        `json:"id"`
	CompanyID uint64        `json:"company_id"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
	User      commentAuthor `json:"user"`
}

func toCommentResponse(c model.CompanyComment) commentResponse {
	name := "Unknown"
	if c.AuthorName != nil {
		name = *c.AuthorName
	}
	return commentResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Message:   c.Comment,
		CreatedAt: c.CreatedAt,
		User:      commentAuthor{ID: c.UserID, Name: name},
	}
}

func toCommentResponses(in []model.CompanyComment) []commentResponse {
	out := make([]commentResponse, 0, len(in))
	for _, c := range in {
		out = append(out, toCommentResponse(c))
	}
	return out
}

type leadResponse struct {
	ID             uint64    `json:"id"`
	DisplayID      string    `json:"display_id"`
	CompanyID      uint64    `json:"company_id"`
	Company        string    `json:"company"`
	AgentID        *uint64   `json:"agent_id"`
	Agent          *string   `json:"agent"`
	ContactTypeID  uint64    `json:"contact_type_id"`
	ContactType    string    `json:"contact_type"`
	LeadTypeID     *uint64   `json:"lead_type_id"`
	LeadType       *string   `json:"lead_type"`
	FullName       string    `json:"full_name"`
	Role           *string   `json:"role"`
	Phone          *string   `json:"phone"`
	Email          *string   `json:"email"`
	OthersContacts *string   `json:"others_contacts"`
	AssignedTo     *string   `json:"assigned_to"`
	FollowUpDate   *string   `json:"follow_up_date"`
	DateBecomeHot  *string   `json:"date_become_hot"`
	CreatedAt      time.Time `json:"created_at"`
	LastModified   time.Time `json:"last_modified"`
}

func toLeadResponse(l model.Lead) leadResponse {
	return leadResponse{
		ID:             l.ID,
		DisplayID:      l.DisplayID(),
		CompanyID:      l.CompanyID,
		Company:        l.CompanyName,
		AgentID:        l.UserID,
		Agent:          l.AgentName,
		ContactTypeID:  l.ContactTypeID,
		ContactType:    l.ContactType,
		LeadTypeID:     l.LeadTypeID,
		LeadType:       l.LeadType,
		FullName:       l.FullName,
		Role:           l.Role,
		Phone:          l.Phone,
		Email:          l.Email,
		OthersContacts: l.OthersContacts,
		AssignedTo:     l.AssignedTo,
		FollowUpDate:   formatDate(l.FollowUpDate),
		DateBecomeHot:  formatDate(l.DateBecomeHot),
		CreatedAt:      l.CreatedAt,
		LastModified:   l.LastModified,
	}
}

func toLeadResponses(in []model.Lead) []leadResponse {
	out := make([]leadResponse, 0, len(in))
	for _, l := range in {
		out = append(out, toLeadResponse(l))
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// parseDate accepts YYYY-MM-DD or RFC 3339. Nil and "" yield nil.
func parseDate(s *string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, true
		}
	}
	return nil, false
}
