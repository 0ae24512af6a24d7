package domain

// AvailabilityStatus is the registration status of a domain as reported
// by the availability oracle.
type AvailabilityStatus string

const (
	// StatusRegistered means the domain is taken.
	StatusRegistered AvailabilityStatus = "registered"

	// StatusAvailable means the domain appears to be open for registration.
	StatusAvailable AvailabilityStatus = "available"

	// StatusUnknown means the lookup could not determine the status.
	StatusUnknown AvailabilityStatus = "unknown"
)

// AvailabilityRecord is the outcome of one availability lookup.
// A record is produced once per domain per round and never retried
// automatically within a round; failures surface as StatusUnknown.
type AvailabilityRecord struct {
	Domain string             `json:"domain"`
	Status AvailabilityStatus `json:"status"`

	// Registrar is the sponsoring registrar when the domain is registered.
	Registrar string `json:"registrar,omitempty"`

	// Expiration and Creation are ISO dates (YYYY-MM-DD) when known.
	Expiration string `json:"expiration,omitempty"`
	Creation   string `json:"creation,omitempty"`

	// Err carries the lookup failure text for StatusUnknown records.
	Err string `json:"error,omitempty"`
}
