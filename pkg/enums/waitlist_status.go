package enums

import "fmt"

// WaitlistStatus maps to the waitlist_status enum in Postgres.
type WaitlistStatus string

const (
	WaitlistStatusWaiting    WaitlistStatus = "waiting"
	WaitlistStatusPromoted   WaitlistStatus = "promoted"
	WaitlistStatusRegistered WaitlistStatus = "registered"
	WaitlistStatusCancelled  WaitlistStatus = "cancelled"
)

var validWaitlistStatuses = []WaitlistStatus{
	WaitlistStatusWaiting,
	WaitlistStatusPromoted,
	WaitlistStatusRegistered,
	WaitlistStatusCancelled,
}

// IsValid checks whether the given status matches the canonical enum.
func (s WaitlistStatus) IsValid() bool {
	for _, candidate := range validWaitlistStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWaitlistStatus converts raw strings into WaitlistStatus.
func ParseWaitlistStatus(value string) (WaitlistStatus, error) {
	for _, candidate := range validWaitlistStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid waitlist status %q", value)
}
