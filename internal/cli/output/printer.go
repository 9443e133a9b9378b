// Package output renders CLI results: operation receipts as field/value
// tables, headered listings, and colored status lines.
package output

import (
	"fmt"
	"io"
	"os"
)

// Printer handles formatted output to a writer.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a new Printer with the given options.
func NewPrinter(out io.Writer, color bool) *Printer {
	return &Printer{
		out:   out,
		color: color,
	}
}

// DefaultPrinter creates a Printer that writes to stdout with color.
func DefaultPrinter() *Printer {
	return NewPrinter(os.Stdout, true)
}

// Writer returns the printer's output writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Println prints a message followed by a newline.
func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

// Printf prints a formatted message.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Success prints a success message.
func (p *Printer) Success(msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "\033[32m%s\033[0m\n", msg)
	} else {
		_, _ = fmt.Fprintln(p.out, msg)
	}
}

// Error prints an error message.
func (p *Printer) Error(msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "\033[31m%s\033[0m\n", msg)
	} else {
		_, _ = fmt.Fprintln(p.out, msg)
	}
}

// Warning prints a warning message.
func (p *Printer) Warning(msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "\033[33m%s\033[0m\n", msg)
	} else {
		_, _ = fmt.Fprintln(p.out, msg)
	}
}

// Receipt renders a receipt table to the printer's writer.
func (p *Printer) Receipt(r *Receipt) error {
	return r.Render(p.out)
}

// Table renders a headered listing to the printer's writer.
func (p *Printer) Table(t *Table) error {
	return t.Render(p.out)
}
