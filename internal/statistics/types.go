package statistics

import (
	"time"

	"github.com/angelmondragon/nazorat-backend/internal/requests"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
)

const dateLayout = "2006-01-02"

// Filter scopes an aggregation. From and To are calendar dates; both are
// included in the range.
type Filter struct {
	From     *time.Time
	To       *time.Time
	TopicID  *uint64
	WorkerID *uint64
}

type TopicStat struct {
	TopicID    uint64  `json:"topic_id"`
	Title      string  `json:"title"`
	Color      string  `json:"color"`
	Count      int64   `json:"count"`
	Completed  int64   `json:"completed"`
	Pending    int64   `json:"pending"`
	Percentage float64 `json:"percentage"`
}

type DailyBucket struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Result is one aggregation. New, UnderReview and Completed partition Total.
type Result struct {
	TotalRequests       int64         `json:"total_requests"`
	NewRequests         int64         `json:"new_requests"`
	UnderReviewRequests int64         `json:"under_review_requests"`
	CompletedRequests   int64         `json:"completed_requests"`
	CompletionRate      float64       `json:"completion_rate"`
	TopicStats          []TopicStat   `json:"topic_stats"`
	Daily               []DailyBucket `json:"daily"`
	TotalUsers          int64         `json:"total_users"`
	TotalAdmins         int64         `json:"total_admins"`
	DateRange           string        `json:"date_range,omitempty"`
}

// Summary is the status breakdown of one worker's requests.
type Summary struct {
	Total          int64   `json:"total"`
	New            int64   `json:"new"`
	UnderReview    int64   `json:"under_review"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// WorkerReport is a worker profile with their requests, newest first.
type WorkerReport struct {
	Worker    models.User       `json:"worker"`
	Requests  []requests.Detail `json:"requests"`
	Summary   Summary           `json:"summary"`
	DateRange string            `json:"date_range,omitempty"`
}
