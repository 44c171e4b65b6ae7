package models

import "time"

// PrintEvent is broadcast to connected dashboards after each print attempt.
type PrintEvent struct {
	JobID       string     `json:"job_id"`
	Type        TicketKind `json:"type"`
	OrderID     string     `json:"order_id"`
	OrderNumber string     `json:"numero_orden"`
	Success     bool       `json:"success"`
	At          time.Time  `json:"at"`
}
