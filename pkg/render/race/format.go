package race

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale groups counter digits with commas.
var DefaultLocale = language.English

// NewPrinter returns a printer for counter text. A printer is cheap; sinks
// create one per render.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// FormatCounter rounds v to an integer and groups its digits for the
// printer's locale, e.g. 1234567.4 -> "1,234,567".
func FormatCounter(p *message.Printer, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return p.Sprintf("%d", int64(math.Round(v)))
}
