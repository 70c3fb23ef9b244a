package booking

import (
	"context"
	"fmt"
)

// SlotPolicy decides whether a cancelled appointment still occupies its slot.
type SlotPolicy struct {
	ReleaseCancelled bool
}

// SlotReader answers occupancy questions. includeCancelled widens the match
// to cancelled appointments.
type SlotReader interface {
	Occupied(ctx context.Context, shopID, date, time string, includeCancelled bool) (bool, error)
	TakenTimes(ctx context.Context, shopID, date string, includeCancelled bool) (map[string]bool, error)
}

// Guard is the read-only availability check done before a booking is written.
type Guard struct {
	slots  SlotReader
	policy SlotPolicy
}

func NewGuard(slots SlotReader, policy SlotPolicy) *Guard {
	return &Guard{slots: slots, policy: policy}
}

func (g *Guard) Policy() SlotPolicy { return g.policy }

// Available matches date and time by exact string equality. A lookup failure
// is returned as an error and never as availability.
func (g *Guard) Available(ctx context.Context, shopID, date, time string) (bool, error) {
	taken, err := g.slots.Occupied(ctx, shopID, date, time, !g.policy.ReleaseCancelled)
	if err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return !taken, nil
}

func (g *Guard) Taken(ctx context.Context, shopID, date string) (map[string]bool, error) {
	taken, err := g.slots.TakenTimes(ctx, shopID, date, !g.policy.ReleaseCancelled)
	if err != nil {
		return nil, fmt.Errorf("list taken slots: %w", err)
	}
	return taken, nil
}
