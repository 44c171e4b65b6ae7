package printer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"go-restaurant-printing/models"
)

const (
	rule       = "----------------"
	doubleRule = "================"

	timeLayout     = "15:04"
	dateLayout     = "02-01-2006"
	dateTimeLayout = "02-01-2006, 15:04:05"

	receiptNameWidth = 20
)

// Formatter lays out kitchen tickets and customer receipts. Now and Location
// default to the wall clock and the local time zone.
type Formatter struct {
	Business models.Business
	Location *time.Location
	Now      func() time.Time
}

func NewFormatter(business models.Business, loc *time.Location) *Formatter {
	return &Formatter{Business: business, Location: loc, Now: time.Now}
}

func (f *Formatter) now() time.Time {
	if f.Now == nil {
		return f.local(time.Now())
	}
	return f.local(f.Now())
}

func (f *Formatter) local(t time.Time) time.Time {
	if f.Location == nil {
		return t
	}
	return t.In(f.Location)
}

// categoryKey groups kitchen items. The uncategorized bucket is its own
// key so it never collides with a real category id.
type categoryKey struct {
	id            int64
	uncategorized bool
}

func categoryOf(item models.OrderItem) categoryKey {
	if item.MenuItem == nil || item.MenuItem.CategoryID == nil {
		return categoryKey{uncategorized: true}
	}
	return categoryKey{id: *item.MenuItem.CategoryID}
}

// groupByCategory keeps groups in order of first appearance.
func groupByCategory(items []models.OrderItem) [][]models.OrderItem {
	index := make(map[categoryKey]int)
	var groups [][]models.OrderItem
	for _, item := range items {
		key := categoryOf(item)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], item)
	}
	return groups
}

// KitchenTicket builds the comanda: items grouped by category with their
// personalization underneath.
func (f *Formatter) KitchenTicket(order models.Order, items []models.OrderItem) Ticket {
	var t Ticket

	table := "N/A"
	if n, ok := order.TableNumber(); ok {
		table = strconv.Itoa(n)
	}

	t.Font(FontA).
		Align(AlignCenter).
		Size(1, 1).
		Text("COMANDA COCINA").
		Text(doubleRule).
		Size(0, 0).
		Align(AlignLeft).
		Text("Orden: " + order.OrderNumber).
		Text("Mesa: " + table).
		Text("Hora: " + f.local(order.CreatedAt).Format(timeLayout)).
		Text(rule).
		Feed(1)

	totalItems := 0
	for _, group := range groupByCategory(items) {
		for _, item := range group {
			totalItems += item.Quantity
			t.Text(fmt.Sprintf("%dx %s", item.Quantity, strings.ToUpper(item.Name())))
			if note := DecodePersonalization(item.Notes); note != "" {
				t.Text("  " + note)
			}
			t.Feed(1)
		}
	}

	if order.HasNote() {
		t.Text(rule).
			Text("NOTA GENERAL:").
			Text(*order.Note).
			Feed(1)
	}

	t.Text(rule).
		Align(AlignCenter).
		Text(fmt.Sprintf("Total Items: %d", totalItems)).
		Text(f.now().Format(dateTimeLayout)).
		Feed(2).
		Cut()
	return t
}

// CustomerReceipt builds the boleta. Line prices are shown net of tax; the
// totals block adds back the tax.
func (f *Formatter) CustomerReceipt(order models.Order, items []models.OrderItem) Ticket {
	var t Ticket

	table := "Para Llevar"
	if n, ok := order.TableNumber(); ok {
		table = strconv.Itoa(n)
	}
	created := f.local(order.CreatedAt)

	t.Font(FontA).
		Align(AlignCenter).
		Size(1, 1).
		Text(f.Business.Name).
		Size(0, 0).
		Text("RUT: " + f.Business.RUT).
		Text(f.Business.Address).
		Text("Celular: " + f.Business.Phone).
		Text(rule).
		Align(AlignLeft).
		Text("Orden: " + order.OrderNumber).
		Text("Mesa: " + table).
		Text("Fecha: " + created.Format(dateLayout)).
		Text("Hora: " + created.Format(timeLayout)).
		Text(rule).
		Feed(1)

	t.Text("Cant. Descripcion        Total").
		Text(rule)
	for _, item := range items {
		t.Text(ReceiptRow(item))
	}

	totals := SumBreakdowns(items)
	t.Text(rule).
		Text(fmt.Sprintf("Monto Neto:     %15s", FormatCurrency(totals.Net))).
		Text(fmt.Sprintf("IVA (19%%):      %15s", FormatCurrency(totals.Tax))).
		Text(rule).
		Font(FontB).
		Text(fmt.Sprintf("TOTAL:          %15s", FormatCurrency(totals.Gross))).
		Font(FontA)

	if order.HasPayment() {
		paid := "N/A"
		if order.PaidAt != nil {
			paid = f.local(*order.PaidAt).Format(dateTimeLayout)
		}
		t.Text(rule).
			Text("Metodo de Pago: " + *order.PaymentMethod).
			Text("Pagado: " + paid)
	}

	t.Text(rule).
		Align(AlignCenter)
	for _, line := range f.Business.Farewell {
		t.Text(line)
	}
	t.Text(f.now().Format(dateTimeLayout)).
		Feed(2).
		Cut()
	return t
}

// ReceiptRow renders one tabulated receipt line: quantity, name and the net
// unit price.
func ReceiptRow(item models.OrderItem) string {
	net := ItemBreakdown(item).Net
	if item.Quantity > 0 {
		net = net.Div(decimal.NewFromInt(int64(item.Quantity)))
	}
	name := []rune(strings.ToUpper(item.Name()))
	if len(name) > receiptNameWidth {
		name = name[:receiptNameWidth]
	}
	return fmt.Sprintf("%2d  %-*s %10s", item.Quantity, receiptNameWidth, string(name), FormatCurrency(net))
}
