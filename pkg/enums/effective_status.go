package enums

import "fmt"

// EffectiveStatus is the lifecycle state shown to users.
type EffectiveStatus string

const (
	EffectiveStatusNew         EffectiveStatus = "new"
	EffectiveStatusUnderReview EffectiveStatus = "under_review"
	EffectiveStatusCompleted   EffectiveStatus = "completed"
)

var validEffectiveStatuses = []EffectiveStatus{
	EffectiveStatusNew,
	EffectiveStatusUnderReview,
	EffectiveStatusCompleted,
}

var effectiveStatusLabels = map[EffectiveStatus]string{
	EffectiveStatusNew:         "Нав",
	EffectiveStatusUnderReview: "Дар тафтиш",
	EffectiveStatusCompleted:   "Иҷро шуд",
}

var effectiveStatusClasses = map[EffectiveStatus]string{
	EffectiveStatusNew:         "info",
	EffectiveStatusUnderReview: "warning",
	EffectiveStatusCompleted:   "success",
}

func (s EffectiveStatus) String() string { return string(s) }

// Label returns the Tajik display label.
func (s EffectiveStatus) Label() string {
	if label, ok := effectiveStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// CSSClass returns the badge class used by the templates.
func (s EffectiveStatus) CSSClass() string {
	if class, ok := effectiveStatusClasses[s]; ok {
		return class
	}
	return "secondary"
}

func (s EffectiveStatus) IsValid() bool {
	for _, candidate := range validEffectiveStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// EffectiveStatuses lists the partition in display order.
func EffectiveStatuses() []EffectiveStatus {
	out := make([]EffectiveStatus, len(validEffectiveStatuses))
	copy(out, validEffectiveStatuses)
	return out
}

// ParseEffectiveStatus converts the raw string to EffectiveStatus.
func ParseEffectiveStatus(value string) (EffectiveStatus, error) {
	for _, candidate := range validEffectiveStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid effective status %q", value)
}
