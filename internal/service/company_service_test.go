package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/queue"
)

func newCompanyFixture() (*CompanyService, *memDB, *recPublisher) {
	db := newMemDB()
	pub := &recPublisher{}
	svc := NewCompanyService(memTx{db}, memCompanies{db}, memHistories{db}, memLookups{db}, pub, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return svc, db, pub
}

func TestCompanyCreateDerivesSymbol(t *testing.T) {
	svc, _, pub := newCompanyFixture()

	c, err := svc.Create(context.Background(), CompanyInput{Name: "  Acme  ", TimezoneID: ptr(uint64(1))}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "ACM", c.Symbol)
	require.NotNil(t, c.TimezoneLabel)
	assert.Equal(t, "1 - EST", *c.TimezoneLabel)
	assert.NotNil(t, c.Histories)
	assert.Equal(t, []string{queue.CompanyCreated}, pub.types())
}

func TestCompanyCreateKeepsExplicitSymbol(t *testing.T) {
	svc, _, _ := newCompanyFixture()
	c, err := svc.Create(context.Background(), CompanyInput{Name: "Acme", Symbol: ptr("AC")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "AC", c.Symbol)
}

func TestCompanyCreateValidation(t *testing.T) {
	svc, _, pub := newCompanyFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, CompanyInput{Name: "   "}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CompanyInput{Name: "Acme", TimezoneID: ptr(uint64(99))}, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "timezone_id", verr.Field)
	assert.Empty(t, pub.types())
}

func TestCompanyCreateDuplicateName(t *testing.T) {
	svc, _, _ := newCompanyFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, CompanyInput{Name: "Acme"}, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CompanyInput{Name: "Acme"}, nil)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCompanyUpdateRecordsOneHistoryRow(t *testing.T) {
	svc, db, pub := newCompanyFixture()
	ctx := context.Background()
	admin := &model.User{ID: 7, Username: "admin1"}

	c, err := svc.Create(ctx, CompanyInput{Name: "Acme", City: ptr("NYC")}, admin)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, c.ID, CompanyInput{Name: "Acme", City: ptr("LA")}, admin)
	require.NoError(t, err)
	assert.Equal(t, "LA", *updated.City)

	hist, err := svc.History(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "2024-05-01 09:30:00 - Modified by admin1 - Company city NYC to LA", hist[0].History)
	require.NotNil(t, hist[0].UserID)
	assert.Equal(t, uint64(7), *hist[0].UserID)
	assert.Len(t, db.histories, 1)

	assert.Equal(t, []string{queue.CompanyCreated, queue.CompanyUpdated}, pub.types())
	assert.Equal(t, hist[0].History, pub.events[1].Summary)
}

func TestCompanyUpdateWithoutChangesWritesNothing(t *testing.T) {
	svc, db, pub := newCompanyFixture()
	ctx := context.Background()

	c, err := svc.Create(ctx, CompanyInput{Name: "Acme", City: ptr("NYC")}, nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, c.ID, CompanyInput{Name: "Acme", City: ptr("NYC")}, nil)
	require.NoError(t, err)
	assert.Empty(t, db.histories)
	assert.Equal(t, []string{queue.CompanyCreated}, pub.types())
}

func TestCompanyUpdateRenameTracksPreviousName(t *testing.T) {
	svc, _, _ := newCompanyFixture()
	ctx := context.Background()

	c, err := svc.Create(ctx, CompanyInput{Name: "Acme"}, nil)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, c.ID, CompanyInput{Name: "Globex"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "GLO", updated.Symbol)
	require.NotNil(t, updated.PreviousName)
	assert.Equal(t, "Acme", *updated.PreviousName)
	assert.Equal(t, "ACM", *updated.PreviousSymbol)
	assert.Equal(t, systemActor, *updated.LastModifiedByName)

	hist, err := svc.History(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "2024-05-01 09:30:00 - Modified by System - Company name Acme to Globex, symbol ACM to GLO", hist[0].History)
	assert.Nil(t, hist[0].UserID)
}

func TestCompanyUpdateClearsOmittedFields(t *testing.T) {
	svc, _, _ := newCompanyFixture()
	ctx := context.Background()

	c, err := svc.Create(ctx, CompanyInput{Name: "Acme", Country: ptr("US")}, nil)
	require.NoError(t, err)
	updated, err := svc.Update(ctx, c.ID, CompanyInput{Name: "Acme"}, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.Country)

	hist, _ := svc.History(ctx, c.ID)
	require.Len(t, hist, 1)
	assert.Contains(t, hist[0].History, "country US to None")
}

func TestCompanyUpdateRollsBackWhenHistoryFails(t *testing.T) {
	svc, db, pub := newCompanyFixture()
	ctx := context.Background()

	c, err := svc.Create(ctx, CompanyInput{Name: "Acme", City: ptr("NYC")}, nil)
	require.NoError(t, err)

	boom := errors.New("disk full")
	db.historyErr = boom
	_, err = svc.Update(ctx, c.ID, CompanyInput{Name: "Acme", City: ptr("LA")}, nil)
	assert.ErrorIs(t, err, boom)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "NYC", *got.City)
	assert.Empty(t, got.Histories)
	assert.Equal(t, []string{queue.CompanyCreated}, pub.types())
}

func TestCompanyUpdateErrors(t *testing.T) {
	svc, _, _ := newCompanyFixture()
	ctx := context.Background()

	_, err := svc.Update(ctx, 404, CompanyInput{Name: "Nope"}, nil)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	a, err := svc.Create(ctx, CompanyInput{Name: "Acme"}, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, CompanyInput{Name: "Globex"}, nil)
	require.NoError(t, err)
	_, err = svc.Update(ctx, a.ID, CompanyInput{Name: "Globex"}, nil)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCompanyListGroupsHistories(t *testing.T) {
	svc, _, _ := newCompanyFixture()
	ctx := context.Background()

	a, err := svc.Create(ctx, CompanyInput{Name: "Acme", City: ptr("NYC")}, nil)
	require.NoError(t, err)
	b, err := svc.Create(ctx, CompanyInput{Name: "Globex"}, nil)
	require.NoError(t, err)
	_, err = svc.Update(ctx, a.ID, CompanyInput{Name: "Acme", City: ptr("LA")}, nil)
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID, "newest first")
	assert.NotNil(t, list[0].Histories)
	assert.Empty(t, list[0].Histories)
	assert.Len(t, list[1].Histories, 1)
}

func TestCompanyDeleteCascades(t *testing.T) {
	svc, db, pub := newCompanyFixture()
	ctx := context.Background()

	c, err := svc.Create(ctx, CompanyInput{Name: "Acme", City: ptr("NYC")}, nil)
	require.NoError(t, err)
	_, err = svc.Update(ctx, c.ID, CompanyInput{Name: "Acme", City: ptr("LA")}, nil)
	require.NoError(t, err)
	db.comments[100] = model.CompanyComment{ID: 100, CompanyID: c.ID, Comment: "hi"}
	db.leads[200] = model.Lead{ID: 200, CompanyID: c.ID, FullName: "Jane"}

	require.NoError(t, svc.Delete(ctx, c.ID, nil))
	assert.Empty(t, db.companies)
	assert.Empty(t, db.histories)
	assert.Empty(t, db.comments)
	assert.Empty(t, db.leads)
	assert.Contains(t, pub.types(), queue.CompanyDeleted)

	assert.ErrorIs(t, svc.Delete(ctx, c.ID, nil), ErrCompanyNotFound)
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}
