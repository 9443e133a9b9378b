package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Receipt is an ordered field/value listing printed after each bank
// operation. Fields render in insertion order.
type Receipt struct {
	rows [][2]string
}

// NewReceipt creates an empty receipt.
func NewReceipt() *Receipt {
	return &Receipt{rows: make([][2]string, 0, 8)}
}

// Add appends a field/value pair.
func (r *Receipt) Add(field, value string) *Receipt {
	r.rows = append(r.rows, [2]string{field, value})
	return r
}

// AddAccount appends an account number field.
func (r *Receipt) AddAccount(field string, no int32) *Receipt {
	return r.Add(field, strconv.FormatInt(int64(no), 10))
}

// AddMoney appends a monetary amount rendered with two decimals and the
// currency code, e.g. "100.00 CNY".
func (r *Receipt) AddMoney(field string, amount float64, currency string) *Receipt {
	return r.Add(field, fmt.Sprintf("%.2f %s", amount, currency))
}

// Fields returns the field/value pairs in insertion order.
func (r *Receipt) Fields() [][2]string {
	return r.rows
}

// Render writes the receipt as a borderless two-column table.
func (r *Receipt) Render(w io.Writer) error {
	table := tablewriter.NewWriter(w)

	// Borderless field/value layout
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(":")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, row := range r.rows {
		table.Append([]string{row[0], row[1]})
	}

	table.Render()
	return nil
}
