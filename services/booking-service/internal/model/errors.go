package model

import "errors"

// Store level outcomes. The booking package translates them into user facing errors.
var (
	ErrNotFound  = errors.New("not found")
	ErrSlotTaken = errors.New("appointment slot already taken")
)
