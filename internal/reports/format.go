package reports

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelmondragon/nazorat-backend/internal/statistics"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
)

const (
	displayLayout  = "02.01.2006 15:04"
	filenameLayout = "20060102_150405"
	ellipsis       = "..."
)

// Report kinds as they appear in file names and metrics.
const (
	KindStatistics       = "statistics"
	KindWorkerStatistics = "worker_statistics"
	KindProtocol         = "protocol"
)

// Filename builds <kind>[_<subject>]_<YYYYMMDD_HHMMSS>.<ext>.
func Filename(kind, subject string, at time.Time, ext string) string {
	ts := at.Format(filenameLayout)
	if subject == "" {
		return fmt.Sprintf("%s_%s.%s", kind, ts, ext)
	}
	return fmt.Sprintf("%s_%s_%s.%s", kind, Sanitize(subject), ts, ext)
}

// Sanitize keeps ASCII letters, digits, '-' and '_'; everything else
// becomes '_'.
func Sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// Truncate cuts text to limit runes and marks the cut with an ellipsis.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + ellipsis
}

func percentText(v float64) string {
	return fmt.Sprintf("%s%%", trimFloat(v))
}

// trimFloat renders 25 as "25" and 33.3 as "33.3".
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

func roleLabel(role enums.UserRole) string {
	if role == enums.UserRoleAdmin {
		return roleAdmin
	}
	return roleUser
}

func workerName(u models.User) string {
	if name := u.DisplayName(); name != "" {
		return name
	}
	return valueUnknown
}

func summaryRows(total, fresh, review, completed int64, rate float64) [][]string {
	return [][]string{
		{labelTotal, fmt.Sprint(total)},
		{labelNew, fmt.Sprint(fresh)},
		{labelUnderReview, fmt.Sprint(review)},
		{labelCompleted, fmt.Sprint(completed)},
		{labelRate, percentText(rate)},
	}
}

func resultSummary(res *statistics.Result) [][]string {
	return summaryRows(res.TotalRequests, res.NewRequests, res.UnderReviewRequests, res.CompletedRequests, res.CompletionRate)
}

func workerSummary(s statistics.Summary) [][]string {
	return summaryRows(s.Total, s.New, s.UnderReview, s.Completed, s.CompletionRate)
}

func baseName(path string) string {
	return filepath.Base(path)
}

func upper(s string) string { return strings.ToUpper(s) }
