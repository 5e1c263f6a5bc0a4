package enums

import "fmt"

// RequestStatus is the raw value stored in requests.status.
type RequestStatus string

const (
	RequestStatusUnderReview RequestStatus = "under_review"
	RequestStatusCompleted   RequestStatus = "completed"

	// Legacy values only appear in stores that predate the status narrowing.
	RequestStatusNew        RequestStatus = "new"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusRejected   RequestStatus = "rejected"
)

var storableRequestStatuses = []RequestStatus{
	RequestStatusUnderReview,
	RequestStatusCompleted,
}

var legacyRequestStatuses = []RequestStatus{
	RequestStatusNew,
	RequestStatusInProgress,
	RequestStatusRejected,
}

func (s RequestStatus) String() string { return string(s) }

// IsStorable reports whether the value may be written by the application.
func (s RequestStatus) IsStorable() bool {
	for _, candidate := range storableRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsLegacy reports whether the value belongs to the retired status set.
func (s RequestStatus) IsLegacy() bool {
	for _, candidate := range legacyRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// StorableRequestStatuses returns the values accepted by status mutations.
func StorableRequestStatuses() []RequestStatus {
	out := make([]RequestStatus, len(storableRequestStatuses))
	copy(out, storableRequestStatuses)
	return out
}

// ParseRequestStatus accepts only storable values.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range storableRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}
