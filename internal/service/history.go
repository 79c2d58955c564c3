package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/sidago/crm-api/internal/model"
)

// historyTimeLayout renders the timestamp prefix of a history entry.
const historyTimeLayout = "2006-01-02 15:04:05"

// systemActor names the author of changes made without an authenticated
// user.
const systemActor = "System"

// trackedField is one row of the company diff table. get returns nil for an
// absent value.
type trackedField struct {
	label string
	get   func(c *model.Company) *string
	set   func(dst, src *model.Company)
}

// companyFields lists the audited fields in the order they appear in a
// history entry.
var companyFields = []trackedField{
	{"name", func(c *model.Company) *string { return &c.Name }, func(d, s *model.Company) { d.Name = s.Name }},
	{"symbol", func(c *model.Company) *string { return &c.Symbol }, func(d, s *model.Company) { d.Symbol = s.Symbol }},
	{"country", func(c *model.Company) *string { return c.Country }, func(d, s *model.Company) { d.Country = s.Country }},
	{"state", func(c *model.Company) *string { return c.State }, func(d, s *model.Company) { d.State = s.State }},
	{"city", func(c *model.Company) *string { return c.City }, func(d, s *model.Company) { d.City = s.City }},
	{"zip", func(c *model.Company) *string { return c.Zip }, func(d, s *model.Company) { d.Zip = s.Zip }},
	{"website", func(c *model.Company) *string { return c.Website }, func(d, s *model.Company) { d.Website = s.Website }},
	{"timezone_id", func(c *model.Company) *string {
		if c.TimezoneID == nil {
			return nil
		}
		v := strconv.FormatUint(*c.TimezoneID, 10)
		return &v
	}, func(d, s *model.Company) { d.TimezoneID = s.TimezoneID }},
}

// diffCompany copies every tracked field of next that differs onto cur and
// returns one "<label> <old> to <new>" entry per copied field.
func diffCompany(cur *model.Company, next *model.Company) []string {
	var diffs []string
	for _, f := range companyFields {
		old, val := f.get(cur), f.get(next)
		if sameValue(old, val) {
			continue
		}
		diffs = append(diffs, f.label+" "+render(old)+" to "+render(val))
		f.set(cur, next)
	}
	return diffs
}

// composeHistory builds the text of one history entry.
func composeHistory(at time.Time, username string, diffs []string) string {
	if username == "" {
		username = systemActor
	}
	return at.UTC().Format(historyTimeLayout) + " - Modified by " + username + " - Company " + strings.Join(diffs, ", ")
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func render(v *string) string {
	if v == nil {
		return "None"
	}
	return *v
}
