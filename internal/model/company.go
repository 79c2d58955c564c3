package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Company is a row of the `companies` table. Optional columns are pointers
// so that NULL stays distinguishable from an empty string. The
// previous/backup/last-modified columns are maintained by the company
// service whenever the name or symbol changes.
type Company struct {
	ID         uint64  // companies.id
	Name       string  // companies.name (unique)
	Symbol     string  // companies.symbol
	Country    *string // companies.country
	State      *string // companies.state
	City       *string // companies.city
	Zip        *string // companies.zip
	Website    *string // companies.website
	TimezoneID *uint64 // companies.timezone_id

	TimezoneLabel *string // timezones.label, joined on read

	PreviousName           *string    // companies.previous_name
	BackupName             *string    // companies.backup_name
	LastModifiedTimeName   *time.Time // companies.last_modified_time_name
	LastModifiedByName     *string    // companies.last_modified_by_name
	PreviousSymbol         *string    // companies.previous_symbol
	BackupSymbol           *string    // companies.backup_symbol
	LastModifiedTimeSymbol *time.Time // companies.last_modified_time_symbol
	LastModifiedBySymbol   *string    // companies.last_modified_by_symbol

	CreatedAt time.Time // companies.created_at

	Histories []CompanyHistory // loaded by list queries only
}

// DeriveSymbol returns the upper-cased first three characters of name.
func DeriveSymbol(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > 3 {
		name = string([]rune(name)[:3])
	}
	return strings.ToUpper(name)
}

// CompanyHistory is one append-only entry of `company_histories`.
type CompanyHistory struct {
	ID        uint64    // company_histories.id
	CompanyID uint64    // company_histories.company_id
	UserID    *uint64   // company_histories.user_id
	History   string    // company_histories.history
	ChangedAt time.Time // company_histories.changed_at
}

// CompanyComment is a row of `company_comments`. AuthorName is joined from
// users.username and is nil when the author is unknown or was deleted.
type CompanyComment struct {
	ID         uint64
	CompanyID  uint64
	UserID     *uint64
	AuthorName *string
	Comment    string
	CreatedAt  time.Time
}

// AuthoredBy reports whether userID wrote the comment.
func (c CompanyComment) AuthoredBy(userID uint64) bool {
	return c.UserID != nil && *c.UserID == userID
}
