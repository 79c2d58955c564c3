package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sidago/crm-api/internal/model"
)

func TestLeadsWorkbook(t *testing.T) {
	follow := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	hot := "Hot"
	phone := "555-0100"
	leads := []model.Lead{
		{
			ID: 1, FullName: "Jane Doe", CompanyName: "Acme", CompanySymbol: "ACM",
			ContactType: "Validated", LeadType: &hot, Phone: &phone, FollowUpDate: &follow,
			CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), LastModified: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
		},
		{ID: 2, FullName: "Sam", CompanyName: "Globex", CompanySymbol: "GLO", ContactType: "Prospecting"},
	}

	data, err := Leads(leads)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(LeadsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, LeadHeaders, rows[0])
	assert.Equal(t, "ACM-Jane Doe", rows[1][1])
	assert.Equal(t, "555-0100", rows[1][5])
	assert.Equal(t, "Hot", rows[1][10])
	assert.Equal(t, "2024-06-03", rows[1][12])
	assert.Equal(t, "2024-05-01 09:00:00", rows[1][14])
	assert.Equal(t, "GLO-Sam", rows[2][1])
}

func TestLeadsWorkbookEmpty(t *testing.T) {
	data, err := Leads(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(LeadsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
