package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders money and multipliers for a locale.
type Formatter struct {
	printer *message.Printer
	symbol  string
	decimal string
}

// NewFormatter builds a formatter for the BCP 47 locale. Unknown locales
// fall back to English; an empty symbol defaults to "$".
func NewFormatter(locale, symbol string) Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	if symbol == "" {
		symbol = "$"
	}
	printer := message.NewPrinter(tag)
	return Formatter{printer: printer, symbol: symbol, decimal: decimalSeparator(printer)}
}

// Money renders d with two decimals and the currency symbol. Digits come
// from the decimal itself; the locale only supplies grouping and the
// decimal separator.
func (f Formatter) Money(d decimal.Decimal) string {
	amount := d.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	whole, frac, _ := strings.Cut(amount.StringFixed(2), ".")
	return sign + f.symbol + f.group(whole) + f.separator() + frac
}

// group applies the locale's digit grouping to a run of digits.
func (f Formatter) group(digits string) string {
	if f.printer == nil {
		return digits
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return digits
	}
	return f.printer.Sprintf("%d", n)
}

func (f Formatter) separator() string {
	if f.decimal == "" {
		return "."
	}
	return f.decimal
}

// decimalSeparator reads the locale's separator off a formatted constant.
func decimalSeparator(p *message.Printer) string {
	formatted := p.Sprintf("%.1f", 1.5)
	if len(formatted) < 3 {
		return "."
	}
	return strings.TrimSuffix(strings.TrimPrefix(formatted, "1"), "5")
}

// Multiplier renders d as "×1.5".
func (f Formatter) Multiplier(d decimal.Decimal) string {
	return "×" + d.Round(2).String()
}

// Lines renders an itemisation as label/amount pairs in display order.
func (f Formatter) Lines(i Itemization) []Line {
	lines := []Line{{
		Label:  "Base price",
		Detail: f.printer.Sprintf("%d pages × %s", i.Pages, f.Money(i.PricePerPage)),
		Amount: f.Money(i.BasePrice),
	}}
	if i.ShowDeadline() {
		lines = append(lines, Line{
			Label:  "Deadline",
			Detail: i.DeadlineName,
			Amount: f.Multiplier(i.DeadlineMultiplier),
		})
	}
	if i.ShowOptions() {
		label, amount := "Other options", f.Multiplier(i.OptionsMultiplier)
		if i.Ungrouped {
			label, amount = "Total multiplier", f.Multiplier(i.TotalMultiplier)
		}
		lines = append(lines, Line{Label: label, Detail: optionSummary(i.SelectedOptions), Amount: amount})
	}
	if i.ShowAdditions() {
		label, amount := "Additional services", "+"+f.Money(i.Additions)
		if i.Additions.IsNegative() {
			label, amount = "Discounts", f.Money(i.Additions)
		}
		lines = append(lines, Line{Label: label, Amount: amount})
	}
	lines = append(lines, Line{Label: "Total", Amount: f.Money(i.Total), Total: true})
	return lines
}

// Line is one rendered row of the price preview.
type Line struct {
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Amount string `json:"amount"`
	Total  bool   `json:"total,omitempty"`
}

func optionSummary(labels []OptionLabel) string {
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, label.Field+": "+label.Option)
	}
	return strings.Join(parts, ", ")
}
