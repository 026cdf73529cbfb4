package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	tokenRe = regexp.MustCompile(`\{[A-Z]+\}`)
)

const DefaultInvoiceNumberTemplate = "INV-{YYYY}{MM}-{ROOM}-{ID}"

// NumberParts are the values an invoice number template can reference.
type NumberParts struct {
	Year       int
	Month      int
	RoomNumber string
	InvoiceID  string
}

// FormatInvoiceNumber renders a display number from a template. {ID} is the
// last six characters of the invoice id. Unknown tokens are an error.
func FormatInvoiceNumber(template string, parts NumberParts) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}

	room := strings.ToUpper(strings.Join(strings.Fields(parts.RoomNumber), ""))
	if room == "" {
		room = "NA"
	}

	id := parts.InvoiceID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}

	out := template
	out = strings.ReplaceAll(out, "{YYYY}", fmt.Sprintf("%04d", parts.Year))
	out = strings.ReplaceAll(out, "{YY}", fmt.Sprintf("%02d", parts.Year%100))
	out = strings.ReplaceAll(out, "{MM}", fmt.Sprintf("%02d", parts.Month))
	out = strings.ReplaceAll(out, "{ROOM}", room)
	out = strings.ReplaceAll(out, "{ID}", id)

	if unresolved := tokenRe.FindString(out); unresolved != "" {
		return "", fmt.Errorf("unresolved token %s in invoice format", unresolved)
	}
	return out, nil
}

// FormatAmount renders an amount with thousands separators and two decimals.
func FormatAmount(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	intPart := decimal.RequireFromString(whole).IntPart()
	out := humanize.Comma(intPart) + "." + frac
	if amount.IsNegative() {
		return "-" + out
	}
	return out
}
