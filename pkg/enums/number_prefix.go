package enums

import "fmt"

// NumberPrefix identifies an independent numbering sequence.
type NumberPrefix string

const (
	NumberPrefixRegistration NumberPrefix = "NAZ"
	NumberPrefixDocument     NumberPrefix = "DOC"
)

var validNumberPrefixes = []NumberPrefix{
	NumberPrefixRegistration,
	NumberPrefixDocument,
}

func (p NumberPrefix) String() string { return string(p) }

func (p NumberPrefix) IsValid() bool {
	for _, candidate := range validNumberPrefixes {
		if candidate == p {
			return true
		}
	}
	return false
}

// Column returns the requests column holding numbers of this sequence.
func (p NumberPrefix) Column() string {
	if p == NumberPrefixDocument {
		return "document_number"
	}
	return "reg_number"
}

// ParseNumberPrefix converts the raw string to NumberPrefix.
func ParseNumberPrefix(value string) (NumberPrefix, error) {
	for _, candidate := range validNumberPrefixes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid number prefix %q", value)
}
