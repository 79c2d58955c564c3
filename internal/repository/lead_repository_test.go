package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidago/crm-api/internal/model"
)

var leadCols = []string{"id", "company_id", "user_id", "contact_type_id", "lead_type_id",
	"full_name", "role", "phone", "email", "others_contacts", "assigned_to",
	"follow_up_date", "date_become_hot", "created_at", "last_modified",
	"name", "symbol", "username", "lead_type", "contact_type"}

func TestLeadRepoGetByIDJoinsLabels(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC().Truncate(time.Second)
	mock.ExpectQuery("FROM leads l").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(leadCols).AddRow(
			5, 1, 7, 1, 1,
			"Jane Doe", "CFO", nil, "jane@acme.test", nil, nil,
			nil, nil, now, now,
			"Acme", "ACM", "agent1", "Hot", "Validated"))

	l, err := NewLeadRepo(db).GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "ACM-Jane Doe", l.DisplayID())
	require.NotNil(t, l.AgentName)
	assert.Equal(t, "agent1", *l.AgentName)
	require.NotNil(t, l.LeadType)
	assert.Equal(t, "Hot", *l.LeadType)
	assert.Equal(t, "Validated", l.ContactType)
	assert.Nil(t, l.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM leads l").WithArgs(uint64(5)).WillReturnRows(sqlmock.NewRows(leadCols))
	_, err = NewLeadRepo(db).GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeadRepoListByAgentEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE l.user_id = ?").WithArgs(uint64(7)).WillReturnRows(sqlmock.NewRows(leadCols))
	leads, err := NewLeadRepo(db).ListByAgent(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestLookupRepo(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewLookupRepo(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, label FROM timezones ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "label"}).AddRow(1, "1 - EST").AddRow(2, "2 - CST"))
	tz, err := repo.List(ctx, model.TimezoneTable)
	require.NoError(t, err)
	assert.Equal(t, []model.Lookup{{ID: 1, Label: "1 - EST"}, {ID: 2, Label: "2 - CST"}}, tz)

	mock.ExpectQuery("FROM contact_types WHERE id").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(0))
	ok, err := repo.Exists(ctx, model.ContactTypeTable, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec("INSERT IGNORE INTO lead_types").WithArgs(uint64(1), "Hot").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Ensure(ctx, model.LeadTypeTable, model.Lookup{ID: 1, Label: "Hot"}))

	_, err = repo.List(ctx, model.LookupTable("users"))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
