package booking

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrShopNotFound        = errors.New("shop not found")
	ErrCartNotFound        = errors.New("cart not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrShopClosed          = errors.New("shop is closed")
	ErrSlotTaken           = errors.New("slot already booked")
	ErrInvalidStatus       = errors.New("invalid appointment status")
)

// ValidationError carries one message per rejected form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid booking: " + strings.Join(keys, ", ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}
