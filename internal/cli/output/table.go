package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Table is a headered listing, used for multi-row output like the account
// listing. Rows render in insertion order.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends one row. Short rows are padded by tablewriter.
func (t *Table) AddRow(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table with a header line and no outer border.
func (t *Table) Render(w io.Writer) error {
	table := tablewriter.NewWriter(w)

	table.SetHeader(t.headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, row := range t.rows {
		table.Append(row)
	}

	table.Render()
	return nil
}
