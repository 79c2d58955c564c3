// Package export renders domain records as spreadsheet files.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sidago/crm-api/internal/model"
)

// LeadsSheet is the name of the only sheet in a lead workbook.
const LeadsSheet = "Leads"

const dateLayout = "2006-01-02"

// LeadHeaders are the column titles, in order.
var LeadHeaders = []string{
	"ID", "Display ID", "Company", "Full Name", "Role", "Phone", "Email",
	"Other Contacts", "Agent", "Assigned To", "Lead Type", "Contact Type",
	"Follow Up", "Became Hot", "Created", "Last Modified",
}

var leadColumnWidths = []float64{8, 24, 24, 24, 16, 16, 28, 28, 16, 16, 12, 14, 12, 12, 20, 20}

// Leads writes leads to an xlsx workbook with a styled, frozen header row.
func Leads(leads []model.Lead) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LeadsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, h := range LeadHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(LeadsSheet, cell, h); err != nil {
			return nil, fmt.Errorf("header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(LeadsSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("header style %s: %w", cell, err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(LeadsSheet, col, col, leadColumnWidths[i]); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	for r, l := range leads {
		row := []any{
			l.ID, l.DisplayID(), l.CompanyName, l.FullName, str(l.Role), str(l.Phone), str(l.Email),
			str(l.OthersContacts), str(l.AgentName), str(l.AssignedTo), str(l.LeadType), l.ContactType,
			date(l.FollowUpDate), date(l.DateBecomeHot),
			l.CreatedAt.UTC().Format(time.DateTime), l.LastModified.UTC().Format(time.DateTime),
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(LeadsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("row %d: %w", r+2, err)
		}
	}

	if err := f.SetPanes(LeadsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
