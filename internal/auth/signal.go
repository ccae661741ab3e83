package auth

import (
	"fmt"
)

// OverrideSignal is the tri-state user-level override of a single permission.
type OverrideSignal uint8

const (
	// OverrideAbsent means no override exists; the role-derived signal decides.
	OverrideAbsent OverrideSignal = iota
	// OverrideGrant grants the permission regardless of the user's roles.
	OverrideGrant
	// OverrideDeny denies the permission regardless of the user's roles.
	OverrideDeny
)

// OverrideOf converts a stored override direction into a signal.
func OverrideOf(granted bool) OverrideSignal {
	if granted {
		return OverrideGrant
	}

	return OverrideDeny
}

// String implements fmt.Stringer.
func (o OverrideSignal) String() string {
	switch o {
	case OverrideAbsent:
		return "none"
	case OverrideGrant:
		return "grant"
	case OverrideDeny:
		return "deny"
	default:
		return fmt.Sprintf("OverrideSignal(%d)", uint8(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o OverrideSignal) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *OverrideSignal) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none", "":
		*o = OverrideAbsent
	case "grant":
		*o = OverrideGrant
	case "deny":
		*o = OverrideDeny
	default:
		return fmt.Errorf("unknown override %q", text)
	}

	return nil
}

// RoleDerivedSignal is what a user's roles say about one permission.
type RoleDerivedSignal struct {
	// Roles lists every held role linked to the permission, sorted by name.
	Roles []string
}

// Granted reports whether at least one held role grants the permission.
func (s RoleDerivedSignal) Granted() bool {
	return len(s.Roles) > 0
}

// Resolve combines both signals into the effective status.
// A present override wins in either direction; without one the role signal decides.
// Any unknown override value resolves to deny.
func Resolve(role RoleDerivedSignal, override OverrideSignal) bool {
	switch override {
	case OverrideAbsent:
		return role.Granted()
	case OverrideGrant:
		return true
	default:
		return false
	}
}
