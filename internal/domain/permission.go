package domain

import "strings"

// PermissionState is the user's consent to display notifications. It is
// process-wide and owned by the host platform.
type PermissionState string

// Permission states. Default means the user has not decided yet.
const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionDefault PermissionState = "default"
)

// ParsePermissionState parses a state name. "undetermined" and "prompt"
// are accepted as synonyms for default.
func ParsePermissionState(s string) (PermissionState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "granted":
		return PermissionGranted, nil
	case "denied":
		return PermissionDenied, nil
	case "default", "undetermined", "prompt", "":
		return PermissionDefault, nil
	default:
		return "", ErrInvalidPermissionState
	}
}

// Decided reports whether the user has answered the consent prompt.
func (p PermissionState) Decided() bool {
	return p == PermissionGranted || p == PermissionDenied
}

// SubscriptionID identifies this user/device to the remote push service.
type SubscriptionID string
