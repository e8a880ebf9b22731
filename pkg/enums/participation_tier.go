package enums

import "fmt"

// ParticipationTier maps to the participation_tier enum in Postgres.
type ParticipationTier string

const (
	TierObserver    ParticipationTier = "observer"
	TierAttendee    ParticipationTier = "attendee"
	TierOrganizer   ParticipationTier = "organizer"
	TierContributor ParticipationTier = "contributor"
	TierAmbassador  ParticipationTier = "ambassador"
)

var validParticipationTiers = []ParticipationTier{
	TierObserver,
	TierAttendee,
	TierOrganizer,
	TierContributor,
	TierAmbassador,
}

// IsValid checks whether the given tier matches the canonical enum.
func (p ParticipationTier) IsValid() bool {
	for _, candidate := range validParticipationTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseParticipationTier converts raw strings into ParticipationTier.
func ParseParticipationTier(value string) (ParticipationTier, error) {
	for _, candidate := range validParticipationTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid participation tier %q", value)
}
