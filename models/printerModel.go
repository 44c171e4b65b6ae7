package models

type PrinterKind string

const (
	PrinterNetwork  PrinterKind = "network"
	PrinterUSB      PrinterKind = "usb"
	PrinterParallel PrinterKind = "parallel"
)

const DefaultPrinterPort = 9100

// PrinterConfig is resolved from the environment; it is never persisted.
type PrinterConfig struct {
	Kind    PrinterKind `json:"type"`
	Address string      `json:"address"`
	Port    int         `json:"port,omitempty"`
}

// PrinterRoles holds the printer for each ticket destination. Colocated is
// set when any printer address or path was configured, even if a role could
// not be resolved.
type PrinterRoles struct {
	Kitchen   *PrinterConfig `json:"kitchen,omitempty"`
	Cashier   *PrinterConfig `json:"cashier,omitempty"`
	Colocated bool           `json:"colocated"`
}

func (r PrinterRoles) Any() bool {
	return r.Colocated || r.Kitchen != nil || r.Cashier != nil
}

// For maps a ticket kind onto the printer role that prints it.
func (r PrinterRoles) For(kind TicketKind) *PrinterConfig {
	switch kind {
	case TicketKitchen:
		return r.Kitchen
	case TicketReceipt:
		return r.Cashier
	}
	return nil
}
