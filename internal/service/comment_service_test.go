package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/model"
)

func newCommentFixture(t *testing.T) (*CommentService, *memDB, model.Company, model.User, model.User) {
	t.Helper()
	db := newMemDB()
	users := memUsers{db}
	alice := users.add(model.User{Email: "agent1@example.com", Username: "agent1"})
	bob := users.add(model.User{Email: "agent2@example.com", Username: "agent2"})
	c := model.Company{Name: "Acme", Symbol: "ACM"}
	require.NoError(t, memCompanies{db}.Create(context.Background(), &c))
	return NewCommentService(memTx{db}, memComments{db}, memCompanies{db}, zap.NewNop()), db, c, alice, bob
}

func TestCommentCreateAndList(t *testing.T) {
	svc, _, company, alice, _ := newCommentFixture(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, company.ID, "called, no answer", &alice)
	require.NoError(t, err)
	require.NotNil(t, first.AuthorName)
	assert.Equal(t, "agent1", *first.AuthorName)

	_, err = svc.Create(ctx, company.ID, "  follow up friday ", &alice)
	require.NoError(t, err)

	list, err := svc.ListByCompany(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "  follow up friday ", list[0].Comment, "newest first, stored as sent")

	byName, err := svc.ListByCompanyName(ctx, "Acme")
	require.NoError(t, err)
	assert.Len(t, byName, 2)
}

func TestCommentCreateRejects(t *testing.T) {
	svc, _, company, alice, _ := newCommentFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, company.ID, "   ", &alice)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = svc.Create(ctx, 999, "hello", &alice)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCommentListUnknownCompany(t *testing.T) {
	svc, _, _, _, _ := newCommentFixture(t)
	ctx := context.Background()

	list, err := svc.ListByCompany(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.ListByCompanyName(ctx, "Nope")
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCommentOnlyAuthorMutates(t *testing.T) {
	svc, db, company, alice, bob := newCommentFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, company.ID, "draft", &alice)
	require.NoError(t, err)

	_, err = svc.Update(ctx, c.ID, "hijacked", &bob)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, c.ID, &bob), ErrForbidden)

	updated, err := svc.Update(ctx, c.ID, "final", &alice)
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Comment)

	_, err = svc.Update(ctx, c.ID, "", &alice)
	assert.ErrorIs(t, err, ErrEmptyMessage)

	require.NoError(t, svc.Delete(ctx, c.ID, &alice))
	assert.Empty(t, db.comments)
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, c.ID, &alice), ErrCommentNotFound)
}

func TestCommentSystemActorBypassesOwnership(t *testing.T) {
	svc, _, company, alice, _ := newCommentFixture(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, company.ID, "note", &alice)
	require.NoError(t, err)
	_, err = svc.Update(ctx, c.ID, "edited by system", nil)
	assert.NoError(t, err)
}
