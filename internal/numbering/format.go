package numbering

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
)

// SeqWidth is the zero-padded width of the trailing sequence.
const SeqWidth = 4

// RegNumberMaxLen matches the width of the reg_number column.
const RegNumberMaxLen = 20

// The sequence is capped so the whole value fits RegNumberMaxLen.
var manualRegNumberPattern = regexp.MustCompile(`^NAZ-\d{4}-\d{4,11}$`)

// Format renders <prefix>-<year>-<seq> with the sequence padded to four digits.
func Format(prefix enums.NumberPrefix, year, seq int) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, SeqWidth, seq)
}

// Parse splits a number into its parts. Sequences wider than four digits are accepted.
func Parse(value string) (enums.NumberPrefix, int, int, error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("malformed number %q", value)
	}
	prefix, err := enums.ParseNumberPrefix(parts[0])
	if err != nil {
		return "", 0, 0, err
	}
	if len(parts[1]) != 4 {
		return "", 0, 0, fmt.Errorf("malformed year in %q", value)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed year in %q", value)
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq < 0 {
		return "", 0, 0, fmt.Errorf("malformed sequence in %q", value)
	}
	return prefix, year, seq, nil
}

// YearPattern is the LIKE pattern matching every number of a prefix and year.
func YearPattern(prefix enums.NumberPrefix, year int) string {
	return fmt.Sprintf("%s-%d-%%", prefix, year)
}

// LockKey names the advisory lock guarding one sequence.
func LockKey(prefix enums.NumberPrefix, year int) string {
	return fmt.Sprintf("%s-%d", prefix, year)
}

// ValidateManualRegNumber normalizes an admin-entered registration number.
func ValidateManualRegNumber(value string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "registration number is required")
	}
	if !manualRegNumberPattern.MatchString(trimmed) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "registration number must look like NAZ-2025-0001").
			WithDetails(map[string]any{"reg_number": value})
	}
	return trimmed, nil
}

// maxSeq returns the highest trailing integer among values of the given sequence.
// Values that don't parse are ignored.
func maxSeq(values []string, prefix enums.NumberPrefix, year int) int {
	highest := 0
	for _, v := range values {
		p, y, seq, err := Parse(v)
		if err != nil || p != prefix || y != year {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest
}
