package game

import (
	"fmt"
	"strings"
)

// HoldBroadcast selects who is told about hold toggles.
type HoldBroadcast string

const (
	// HoldBroadcastOthers notifies everyone but the player who toggled.
	HoldBroadcastOthers HoldBroadcast = "others"
	// HoldBroadcastAll notifies every session in the room.
	HoldBroadcastAll HoldBroadcast = "all"
	// HoldBroadcastNone keeps holds private to the current player, including
	// in full room snapshots.
	HoldBroadcastNone HoldBroadcast = "none"
)

// Policy holds the per-deployment rules a Registry applies to every room.
type Policy struct {
	HoldBroadcast HoldBroadcast
	// AllowRecommit lets a commit overwrite an already filled category.
	AllowRecommit bool
	// EnforceTurn rejects roll, hold and commit from anyone but the
	// current player.
	EnforceTurn bool
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{HoldBroadcast: HoldBroadcastOthers}
}

// ParseHoldBroadcast validates a hold broadcast mode. The empty string
// selects HoldBroadcastOthers.
func ParseHoldBroadcast(s string) (HoldBroadcast, error) {
	switch mode := HoldBroadcast(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return HoldBroadcastOthers, nil
	case HoldBroadcastOthers, HoldBroadcastAll, HoldBroadcastNone:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid hold broadcast mode %q", s)
	}
}

// NormalizePolicy fills defaults and validates in.
func NormalizePolicy(in Policy) (Policy, error) {
	mode, err := ParseHoldBroadcast(string(in.HoldBroadcast))
	if err != nil {
		return Policy{}, err
	}
	in.HoldBroadcast = mode
	return in, nil
}
