package statistics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/nazorat-backend/internal/requests"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"gorm.io/gorm"
)

const trailingDays = 30

type workerRequests interface {
	ListByUser(ctx context.Context, userID uint64, from, to *time.Time) ([]requests.Detail, error)
}

// Service aggregates request counts. Every figure of one Result is derived
// from the same filtered base query.
type Service struct {
	db       *gorm.DB
	requests workerRequests
	loc      *time.Location
	now      func() time.Time
	logg     *logger.Logger
}

type Params struct {
	DB       *gorm.DB
	Requests workerRequests
	Location *time.Location
	Clock    func() time.Time
	Logger   *logger.Logger
}

func NewService(p Params) (*Service, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	if p.Requests == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	if p.Clock == nil {
		p.Clock = time.Now
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	return &Service{db: p.DB, requests: p.Requests, loc: p.Location, now: p.Clock, logg: p.Logger}, nil
}

// bounds is a half-open [from, to) instant range in the report location.
type bounds struct {
	from *time.Time
	to   *time.Time
}

func (s *Service) resolve(f Filter) (bounds, error) {
	var b bounds
	if f.From != nil {
		from := s.day(*f.From)
		b.from = &from
	}
	if f.To != nil {
		to := s.day(*f.To).AddDate(0, 0, 1)
		b.to = &to
	}
	if b.from != nil && b.to != nil && !b.from.Before(*b.to) {
		return bounds{}, pkgerrors.New(pkgerrors.CodeValidation, "date_from must not be after date_to").
			WithDetails(map[string]any{"date_from": f.From.Format(dateLayout), "date_to": f.To.Format(dateLayout)})
	}
	return b, nil
}

// day is local midnight of the calendar date carried by t.
func (s *Service) day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *Service) base(ctx context.Context, f Filter, b bounds) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Request{})
	if b.from != nil {
		q = q.Where("requests.created_at >= ?", b.from.UTC())
	}
	if b.to != nil {
		q = q.Where("requests.created_at < ?", b.to.UTC())
	}
	if f.TopicID != nil {
		q = q.Where("requests.topic_id = ?", *f.TopicID)
	}
	if f.WorkerID != nil {
		q = q.Where("requests.user_id = ?", *f.WorkerID)
	}
	return q.Session(&gorm.Session{})
}

// Aggregate computes totals, the topic breakdown, the daily series and the
// account tallies for the filter.
func (s *Service) Aggregate(ctx context.Context, f Filter) (*Result, error) {
	b, err := s.resolve(f)
	if err != nil {
		return nil, err
	}
	base := s.base(ctx, f, b)

	res := &Result{DateRange: DateRange(f.From, f.To)}
	if err := s.partitions(base, res); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count requests")
	}
	res.CompletionRate = Percent(res.CompletedRequests, res.TotalRequests)

	if res.TopicStats, err = s.topicStats(base, res.TotalRequests); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "topic breakdown")
	}
	if res.Daily, err = s.daily(base, b); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "daily series")
	}
	if err := s.tallies(ctx, f, res); err != nil {
		return nil, err
	}

	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"total_requests": res.TotalRequests,
		"topics":         len(res.TopicStats),
	}), "statistics.aggregated")
	return res, nil
}

type partitionRow struct {
	Status enums.RequestStatus `gorm:"column:status"`
	Unread int                 `gorm:"column:unread"`
	N      int64               `gorm:"column:n"`
}

const unreadExpr = "CASE WHEN requests.admin_read_at IS NULL THEN 1 ELSE 0 END"

// partitions counts by (status, read) in one grouped query and classifies
// each group with the effective status rule.
func (s *Service) partitions(base *gorm.DB, res *Result) error {
	var rows []partitionRow
	err := base.
		Select("requests.status AS status, " + unreadExpr + " AS unread, COUNT(*) AS n").
		Group("requests.status, " + unreadExpr).
		Scan(&rows).Error
	if err != nil {
		return err
	}
	readAt := time.Time{}
	for _, row := range rows {
		var stamp *time.Time
		if row.Unread == 0 {
			stamp = &readAt
		}
		res.TotalRequests += row.N
		switch requests.EffectiveStatus(row.Status, stamp) {
		case enums.EffectiveStatusCompleted:
			res.CompletedRequests += row.N
		case enums.EffectiveStatusNew:
			res.NewRequests += row.N
		default:
			res.UnderReviewRequests += row.N
		}
	}
	return nil
}

type topicRow struct {
	TopicID   uint64 `gorm:"column:topic_id"`
	Title     string `gorm:"column:title"`
	Color     string `gorm:"column:color"`
	Count     int64  `gorm:"column:total"`
	Completed int64  `gorm:"column:completed"`
}

func (s *Service) topicStats(base *gorm.DB, total int64) ([]TopicStat, error) {
	var rows []topicRow
	err := base.
		Select("requests.topic_id AS topic_id, topics.title AS title, topics.color AS color, "+
			"COUNT(*) AS total, SUM(CASE WHEN requests.status = ? THEN 1 ELSE 0 END) AS completed",
			enums.RequestStatusCompleted).
		Joins("JOIN topics ON topics.id = requests.topic_id").
		Group("requests.topic_id, topics.title, topics.color").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]TopicStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, TopicStat{
			TopicID:    row.TopicID,
			Title:      row.Title,
			Color:      row.Color,
			Count:      row.Count,
			Completed:  row.Completed,
			Pending:    row.Count - row.Completed,
			Percentage: Percent(row.Count, total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

// daily returns one bucket per calendar day of the window. Without bounds
// the window is the trailing 30 days ending today; with one bound it is the
// 30 days starting or ending there.
func (s *Service) daily(base *gorm.DB, b bounds) ([]DailyBucket, error) {
	var start, end time.Time
	switch {
	case b.from != nil && b.to != nil:
		start, end = *b.from, *b.to
	case b.from != nil:
		start, end = *b.from, b.from.AddDate(0, 0, trailingDays)
	case b.to != nil:
		start, end = b.to.AddDate(0, 0, -trailingDays), *b.to
	default:
		end = s.day(s.now().In(s.loc)).AddDate(0, 0, 1)
		start = end.AddDate(0, 0, -trailingDays)
	}

	var stamps []time.Time
	err := base.
		Where("requests.created_at >= ? AND requests.created_at < ?", start.UTC(), end.UTC()).
		Pluck("requests.created_at", &stamps).Error
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	var out []DailyBucket
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		index[key] = len(out)
		out = append(out, DailyBucket{Date: key})
	}
	for _, at := range stamps {
		if i, ok := index[at.In(s.loc).Format(dateLayout)]; ok {
			out[i].Count++
		}
	}
	return out, nil
}

func (s *Service) tallies(ctx context.Context, f Filter, res *Result) error {
	if f.WorkerID != nil {
		var worker models.User
		err := s.db.WithContext(ctx).Select("id", "role").First(&worker, *f.WorkerID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load worker")
		}
		if worker.IsAdmin() {
			res.TotalAdmins = 1
		} else {
			res.TotalUsers = 1
		}
		return nil
	}

	users := s.db.WithContext(ctx).Model(&models.User{}).Session(&gorm.Session{})
	if err := users.Where("role = ?", enums.UserRoleUser).Count(&res.TotalUsers).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if err := users.Where("role = ?", enums.UserRoleAdmin).Count(&res.TotalAdmins).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
	}
	return nil
}

// WorkerReport loads a worker with their requests in the filter window.
func (s *Service) WorkerReport(ctx context.Context, workerID uint64, f Filter) (*WorkerReport, error) {
	b, err := s.resolve(f)
	if err != nil {
		return nil, err
	}

	var worker models.User
	if err := s.db.WithContext(ctx).First(&worker, workerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "worker not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load worker")
	}

	var from, to *time.Time
	if b.from != nil {
		v := b.from.UTC()
		from = &v
	}
	if b.to != nil {
		v := b.to.UTC()
		to = &v
	}
	rows, err := s.requests.ListByUser(ctx, workerID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list worker requests")
	}

	return &WorkerReport{
		Worker:    worker,
		Requests:  rows,
		Summary:   Summarize(rows),
		DateRange: DateRange(f.From, f.To),
	}, nil
}

// Summarize partitions details by effective status.
func Summarize(rows []requests.Detail) Summary {
	var sum Summary
	for _, row := range rows {
		sum.Total++
		switch row.Effective {
		case enums.EffectiveStatusCompleted:
			sum.Completed++
		case enums.EffectiveStatusNew:
			sum.New++
		default:
			sum.UnderReview++
		}
	}
	sum.CompletionRate = Percent(sum.Completed, sum.Total)
	return sum
}

// DateRange renders the filter period as "dd.mm.yyyy - dd.mm.yyyy".
func DateRange(from, to *time.Time) string {
	const layout = "02.01.2006"
	switch {
	case from != nil && to != nil:
		return from.Format(layout) + " - " + to.Format(layout)
	case from != nil:
		return "аз " + from.Format(layout)
	case to != nil:
		return "то " + to.Format(layout)
	default:
		return ""
	}
}
