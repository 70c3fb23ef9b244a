package model

import "github.com/shopspring/decimal"

// DayHours is one weekday's opening window.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// Shop is the storefront's read view of a tenant.
type Shop struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Address      string              `json:"address"`
	Phone        string              `json:"phone"`
	Logo         string              `json:"logo"`
	IsOpen       bool                `json:"isOpen"`
	OpeningHours map[string]DayHours `json:"openingHours"`
}

type Service struct {
	ID              string          `json:"id"`
	ShopID          string          `json:"shopId"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration"`
	Description     string          `json:"description,omitempty"`
	Image           string          `json:"image,omitempty"`
}
