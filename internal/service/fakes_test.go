package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/queue"
	"github.com/sidago/crm-api/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL schema. memTx snapshots it
// on entry and restores the snapshot when the unit of work fails.
type memDB struct {
	mu        sync.Mutex
	seq       uint64
	users     map[uint64]model.User
	tokens    map[uint64]model.UserToken
	companies map[uint64]model.Company
	histories map[uint64]model.CompanyHistory
	comments  map[uint64]model.CompanyComment
	leads     map[uint64]model.Lead
	lookups   map[model.LookupTable]map[uint64]string

	historyErr error // returned by the next history insert when set
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[uint64]model.User{},
		tokens:    map[uint64]model.UserToken{},
		companies: map[uint64]model.Company{},
		histories: map[uint64]model.CompanyHistory{},
		comments:  map[uint64]model.CompanyComment{},
		leads:     map[uint64]model.Lead{},
		lookups: map[model.LookupTable]map[uint64]string{
			model.TimezoneTable:    {1: "1 - EST", 2: "2 - CST", 3: "3 - MST", 4: "4 - PST"},
			model.LeadTypeTable:    {1: "Hot", 2: "General"},
			model.ContactTypeTable: {1: "Validated", 2: "Prospecting"},
		},
	}
}

func (m *memDB) nextID() uint64 {
	m.seq++
	return m.seq
}

type memSnapshot struct {
	users     map[uint64]model.User
	tokens    map[uint64]model.UserToken
	companies map[uint64]model.Company
	histories map[uint64]model.CompanyHistory
	comments  map[uint64]model.CompanyComment
	leads     map[uint64]model.Lead
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memDB) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memSnapshot{copyMap(m.users), copyMap(m.tokens), copyMap(m.companies),
		copyMap(m.histories), copyMap(m.comments), copyMap(m.leads)}
}

func (m *memDB) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users, m.tokens, m.companies = s.users, s.tokens, s.companies
	m.histories, m.comments, m.leads = s.histories, s.comments, s.leads
}

type memTx struct{ db *memDB }

func (t memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.db.snapshot()
	if err := fn(ctx); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

// users

type memUsers struct{ db *memDB }

func (s memUsers) add(u model.User) model.User {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u.ID = s.db.nextID()
	u.Email = repository.NormalizeEmail(u.Email)
	s.db.users[u.ID] = u
	return u
}

func (s memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = repository.NormalizeEmail(email)
	for _, u := range s.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

// tokens

type memTokens struct{ db *memDB }

func (s memTokens) Create(_ context.Context, t *model.UserToken) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, row := range s.db.tokens {
		if row.RefreshTokenHash == t.RefreshTokenHash {
			return repository.ErrDuplicate
		}
	}
	t.ID = s.db.nextID()
	t.CreatedAt = time.Now().UTC()
	s.db.tokens[t.ID] = *t
	return nil
}

func (s memTokens) find(match func(model.UserToken) bool) (model.UserToken, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, row := range s.db.tokens {
		if match(row) {
			return row, nil
		}
	}
	return model.UserToken{}, repository.ErrNotFound
}

func (s memTokens) GetByRefreshHash(_ context.Context, hash string) (model.UserToken, error) {
	return s.find(func(t model.UserToken) bool { return t.RefreshTokenHash == hash })
}

func (s memTokens) GetByAccessHash(_ context.Context, hash string) (model.UserToken, error) {
	return s.find(func(t model.UserToken) bool { return t.AccessTokenHash == hash })
}

func (s memTokens) Rotate(_ context.Context, id uint64, oldRefreshHash, accessHash, refreshHash string, expiresAt time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	row, ok := s.db.tokens[id]
	if !ok || row.RefreshTokenHash != oldRefreshHash {
		return repository.ErrNotFound
	}
	row.AccessTokenHash, row.RefreshTokenHash, row.ExpiresAt = accessHash, refreshHash, expiresAt
	s.db.tokens[id] = row
	return nil
}

func (s memTokens) DeleteByAccessHash(_ context.Context, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, row := range s.db.tokens {
		if row.AccessTokenHash == hash {
			delete(s.db.tokens, id)
		}
	}
	return nil
}

// companies

type memCompanies struct{ db *memDB }

func (s memCompanies) Create(_ context.Context, c *model.Company) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, other := range s.db.companies {
		if other.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.ID = s.db.nextID()
	c.CreatedAt = time.Now().UTC()
	s.db.companies[c.ID] = *c
	return nil
}

func (s memCompanies) hydrate(c model.Company) model.Company {
	if c.TimezoneID != nil {
		if label, ok := s.db.lookups[model.TimezoneTable][*c.TimezoneID]; ok {
			c.TimezoneLabel = &label
		}
	}
	return c
}

func (s memCompanies) GetByID(_ context.Context, id uint64) (model.Company, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.companies[id]
	if !ok {
		return model.Company{}, repository.ErrNotFound
	}
	return s.hydrate(c), nil
}

func (s memCompanies) GetByName(_ context.Context, name string) (model.Company, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.companies {
		if c.Name == name {
			return s.hydrate(c), nil
		}
	}
	return model.Company{}, repository.ErrNotFound
}

func (s memCompanies) NameTaken(_ context.Context, name string, excludeID uint64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.companies {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s memCompanies) List(_ context.Context) ([]model.Company, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.Company{}
	for _, c := range s.db.companies {
		out = append(out, s.hydrate(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s memCompanies) Update(_ context.Context, c *model.Company) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.companies[c.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *c
	stored.TimezoneLabel, stored.Histories = nil, nil
	s.db.companies[c.ID] = stored
	return nil
}

func (s memCompanies) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.companies[id]; !ok {
		return repository.ErrNotFound
	}
	for k, v := range s.db.comments {
		if v.CompanyID == id {
			delete(s.db.comments, k)
		}
	}
	for k, v := range s.db.histories {
		if v.CompanyID == id {
			delete(s.db.histories, k)
		}
	}
	for k, v := range s.db.leads {
		if v.CompanyID == id {
			delete(s.db.leads, k)
		}
	}
	delete(s.db.companies, id)
	return nil
}

// histories

type memHistories struct{ db *memDB }

func (s memHistories) Create(_ context.Context, h *model.CompanyHistory) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.historyErr; err != nil {
		s.db.historyErr = nil
		return err
	}
	h.ID = s.db.nextID()
	s.db.histories[h.ID] = *h
	return nil
}

func (s memHistories) list(match func(model.CompanyHistory) bool) []model.CompanyHistory {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.CompanyHistory{}
	for _, h := range s.db.histories {
		if match(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s memHistories) ListByCompany(_ context.Context, companyID uint64) ([]model.CompanyHistory, error) {
	return s.list(func(h model.CompanyHistory) bool { return h.CompanyID == companyID }), nil
}

func (s memHistories) ListAll(_ context.Context) ([]model.CompanyHistory, error) {
	return s.list(func(model.CompanyHistory) bool { return true }), nil
}

// comments

type memComments struct{ db *memDB }

func (s memComments) hydrate(c model.CompanyComment) model.CompanyComment {
	if c.UserID != nil {
		if u, ok := s.db.users[*c.UserID]; ok {
			name := u.Username
			c.AuthorName = &name
		}
	}
	return c
}

func (s memComments) Create(_ context.Context, c *model.CompanyComment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c.ID = s.db.nextID()
	c.CreatedAt = time.Now().UTC()
	s.db.comments[c.ID] = *c
	*c = s.hydrate(*c)
	return nil
}

func (s memComments) GetByID(_ context.Context, id uint64) (model.CompanyComment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return model.CompanyComment{}, repository.ErrNotFound
	}
	return s.hydrate(c), nil
}

func (s memComments) ListByCompany(_ context.Context, companyID uint64) ([]model.CompanyComment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.CompanyComment{}
	for _, c := range s.db.comments {
		if c.CompanyID == companyID {
			out = append(out, s.hydrate(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s memComments) UpdateMessage(_ context.Context, id uint64, message string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Comment = message
	s.db.comments[id] = c
	return nil
}

func (s memComments) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.comments, id)
	return nil
}

// leads

type memLeads struct{ db *memDB }

func (s memLeads) hydrate(l model.Lead) model.Lead {
	c := s.db.companies[l.CompanyID]
	l.CompanyName, l.CompanySymbol = c.Name, c.Symbol
	l.ContactType = s.db.lookups[model.ContactTypeTable][l.ContactTypeID]
	l.AgentName, l.LeadType = nil, nil
	if l.UserID != nil {
		if u, ok := s.db.users[*l.UserID]; ok {
			name := u.Username
			l.AgentName = &name
		}
	}
	if l.LeadTypeID != nil {
		if label, ok := s.db.lookups[model.LeadTypeTable][*l.LeadTypeID]; ok {
			l.LeadType = &label
		}
	}
	return l
}

func (s memLeads) Create(_ context.Context, l *model.Lead) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	l.ID = s.db.nextID()
	l.CreatedAt = time.Now().UTC()
	l.LastModified = l.CreatedAt
	s.db.leads[l.ID] = *l
	*l = s.hydrate(*l)
	return nil
}

func (s memLeads) Update(_ context.Context, l *model.Lead) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.leads[l.ID]; !ok {
		return repository.ErrNotFound
	}
	l.LastModified = time.Now().UTC()
	s.db.leads[l.ID] = *l
	*l = s.hydrate(*l)
	return nil
}

func (s memLeads) GetByID(_ context.Context, id uint64) (model.Lead, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	l, ok := s.db.leads[id]
	if !ok {
		return model.Lead{}, repository.ErrNotFound
	}
	return s.hydrate(l), nil
}

func (s memLeads) list(match func(model.Lead) bool) []model.Lead {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.Lead{}
	for _, l := range s.db.leads {
		if match(l) {
			out = append(out, s.hydrate(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s memLeads) List(_ context.Context) ([]model.Lead, error) {
	return s.list(func(model.Lead) bool { return true }), nil
}

func (s memLeads) ListByAgent(_ context.Context, userID uint64) ([]model.Lead, error) {
	return s.list(func(l model.Lead) bool { return l.UserID != nil && *l.UserID == userID }), nil
}

// lookups

type memLookups struct{ db *memDB }

func (s memLookups) List(_ context.Context, t model.LookupTable) ([]model.Lookup, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.Lookup{}
	for id, label := range s.db.lookups[t] {
		out = append(out, model.Lookup{ID: id, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memLookups) Exists(_ context.Context, t model.LookupTable, id uint64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.lookups[t][id]
	return ok, nil
}

// recPublisher records published events.
type recPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
