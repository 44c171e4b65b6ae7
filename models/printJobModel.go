package models

type TicketKind string

const (
	TicketKitchen TicketKind = "kitchen"
	TicketReceipt TicketKind = "receipt"
)

func (k TicketKind) Valid() bool {
	return k == TicketKitchen || k == TicketReceipt
}

// PrintJob is the body the app server posts to the print service.
type PrintJob struct {
	Type  TicketKind  `json:"type" validate:"required,eq=kitchen|eq=receipt"`
	Order Order       `json:"orden"`
	Items []OrderItem `json:"items" validate:"required,min=1,dive"`
}

type PrintResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Business identity printed on the customer receipt header and footer.
type Business struct {
	Name     string
	RUT      string
	Address  string
	Phone    string
	Farewell []string
}
