package enums

import "fmt"

// UserDeleteMode controls what happens to a user's requests on deletion.
type UserDeleteMode string

const (
	UserDeleteKeep         UserDeleteMode = "keep"
	UserDeleteWithRequests UserDeleteMode = "with_requests"
)

var validUserDeleteModes = []UserDeleteMode{
	UserDeleteKeep,
	UserDeleteWithRequests,
}

func (m UserDeleteMode) IsValid() bool {
	for _, candidate := range validUserDeleteModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseUserDeleteMode converts the raw string to UserDeleteMode, defaulting to keep.
func ParseUserDeleteMode(value string) (UserDeleteMode, error) {
	if value == "" {
		return UserDeleteKeep, nil
	}
	for _, candidate := range validUserDeleteModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user delete mode %q", value)
}
