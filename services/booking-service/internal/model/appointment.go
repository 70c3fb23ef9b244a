package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(raw string) (Status, bool) {
	switch s := Status(raw); s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return s, true
	}
	return "", false
}

// Line is the service snapshot stored with an appointment.
type Line struct {
	ServiceID string          `json:"serviceId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Appointment date and time are kept as the exact strings the customer picked
// (YYYY-MM-DD and HH:MM); slot matching compares them verbatim.
type Appointment struct {
	ID          string          `json:"id"`
	ShopID      string          `json:"shopId"`
	ClientName  string          `json:"clientName"`
	ClientPhone string          `json:"clientPhone"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Services    []Line          `json:"services"`
	Total       decimal.Decimal `json:"total"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
