package printer

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"go-restaurant-printing/models"
)

// VATRate is the value-added tax included in every menu price.
var VATRate = decimal.RequireFromString("0.19")

var vatDivisor = decimal.NewFromInt(1).Add(VATRate)

// PriceBreakdown splits a tax-inclusive amount. Values are kept unrounded;
// rounding happens in FormatCurrency.
type PriceBreakdown struct {
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Gross decimal.Decimal
}

func Breakdown(gross decimal.Decimal) PriceBreakdown {
	net := gross.Div(vatDivisor)
	return PriceBreakdown{
		Net:   net,
		Tax:   gross.Sub(net),
		Gross: gross,
	}
}

func (b PriceBreakdown) Add(o PriceBreakdown) PriceBreakdown {
	return PriceBreakdown{
		Net:   b.Net.Add(o.Net),
		Tax:   b.Tax.Add(o.Tax),
		Gross: b.Gross.Add(o.Gross),
	}
}

// ItemBreakdown splits the line subtotal of an order item.
func ItemBreakdown(item models.OrderItem) PriceBreakdown {
	return Breakdown(decimal.NewFromFloat(item.Subtotal))
}

// SumBreakdowns adds the per-item nets and taxes independently instead of
// re-splitting the summed gross.
func SumBreakdowns(items []models.OrderItem) PriceBreakdown {
	total := PriceBreakdown{Net: decimal.Zero, Tax: decimal.Zero, Gross: decimal.Zero}
	for _, item := range items {
		total = total.Add(ItemBreakdown(item))
	}
	return total
}

// FormatCurrency renders an amount in whole pesos with grouped thousands,
// e.g. $1,000.
func FormatCurrency(amount decimal.Decimal) string {
	n := amount.Round(0).IntPart()
	if n < 0 {
		return "-$" + humanize.Comma(-n)
	}
	return "$" + humanize.Comma(n)
}
