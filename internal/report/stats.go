// Package report formats pool occupancy statistics for display, using
// golang.org/x/text for locale-aware number formatting — the same
// dependency the teacher reaches for when text must leave the process in
// a human-readable form, there for packet string transcoding, here for a
// stats report.
package report

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats summarizes one pool's slot occupancy at a point in time.
type Stats struct {
	Capacity      int
	ActiveCount   int
	FreeCount     int
	PendingDestroy int
}

// Printer formats Stats using a fixed locale's number formatting
// (thousands separators, etc).
type Printer struct {
	p *message.Printer
}

// NewPrinter creates a Printer for the given BCP 47 locale tag, e.g.
// "en-US" or "de-DE".
func NewPrinter(locale string) *Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return &Printer{p: message.NewPrinter(tag)}
}

// Fprint writes a one-line summary of s to w.
func (p *Printer) Fprint(w io.Writer, s Stats) error {
	_, err := p.p.Fprintf(w, "capacity=%d active=%d free=%d pending_destroy=%d\n",
		s.Capacity, s.ActiveCount, s.FreeCount, s.PendingDestroy)
	return err
}

// Sprint returns the one-line summary of s as a string.
func (p *Printer) Sprint(s Stats) string {
	return p.p.Sprintf("capacity=%d active=%d free=%d pending_destroy=%d",
		s.Capacity, s.ActiveCount, s.FreeCount, s.PendingDestroy)
}

// FillRatio returns the fraction of usable slots (capacity-1, since slot 0
// is reserved) currently active, or 0 for a pool with no usable slots.
func (s Stats) FillRatio() float64 {
	usable := s.Capacity - 1
	if usable <= 0 {
		return 0
	}
	return float64(s.ActiveCount) / float64(usable)
}

// String implements fmt.Stringer for debug output outside a Printer.
func (s Stats) String() string {
	return fmt.Sprintf("Stats{Capacity:%d Active:%d Free:%d PendingDestroy:%d}",
		s.Capacity, s.ActiveCount, s.FreeCount, s.PendingDestroy)
}
