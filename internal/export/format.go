package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// InvoiceNumber renders an invoice id as INV-0001
func InvoiceNumber(id int64) string {
	return fmt.Sprintf("INV-%04d", id)
}

// FileName is the download name for an invoice's PDF
func FileName(id int64) string {
	return fmt.Sprintf("invoice-%04d.pdf", id)
}

// FormatCurrency renders an amount as US dollars with thousands grouping,
// e.g. $1,500.00.
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + "$" + printer.Sprintf("%.2f", amount.Abs().Round(2).InexactFloat64())
}
