package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/nazorat-backend/pkg/db"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"github.com/angelmondragon/nazorat-backend/pkg/metrics"
	"gorm.io/gorm"
)

const defaultMaxRetries = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PersistFunc stores number on a row inside the assignment transaction.
// It may run more than once when a collision forces a retry.
type PersistFunc func(tx *gorm.DB, number string) error

// Service hands out year-scoped sequential numbers.
type Service struct {
	tx            txRunner
	advisoryLocks bool
	maxRetries    int
	metrics       *metrics.NumberingMetrics
	logg          *logger.Logger
}

type Options struct {
	// AdvisoryLocks takes pg_advisory_xact_lock per sequence; postgres only.
	AdvisoryLocks bool
	MaxRetries    int
	Metrics       *metrics.NumberingMetrics
	Logger        *logger.Logger
}

func NewService(tx txRunner, opts Options) (*Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Service{
		tx:            tx,
		advisoryLocks: opts.AdvisoryLocks,
		maxRetries:    opts.MaxRetries,
		metrics:       opts.Metrics,
		logg:          opts.Logger,
	}, nil
}

// Next returns the number following the numeric maximum already stored for
// prefix and year, or seq 1 when the year has none.
func Next(ctx context.Context, tx *gorm.DB, prefix enums.NumberPrefix, year int) (string, error) {
	var values []string
	err := tx.WithContext(ctx).
		Model(&models.Request{}).
		Where(prefix.Column()+" LIKE ?", YearPattern(prefix, year)).
		Pluck(prefix.Column(), &values).Error
	if err != nil {
		return "", err
	}
	return Format(prefix, year, maxSeq(values, prefix, year)+1), nil
}

// Assign generates the next number and persists it in one transaction. On
// postgres the sequence is serialized by an advisory lock; on every engine a
// unique violation rolls back and retries. Exhausted retries surface as
// NUMBERING_CONFLICT.
func (s *Service) Assign(ctx context.Context, prefix enums.NumberPrefix, year int, persist PersistFunc) (string, error) {
	if !prefix.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown number prefix")
	}
	if persist == nil {
		return "", fmt.Errorf("persist func required")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"number_prefix": prefix.String(), "number_year": year})

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		var number string
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.lock(ctx, tx, prefix, year); err != nil {
				return err
			}
			next, err := Next(ctx, tx, prefix, year)
			if err != nil {
				return err
			}
			number = next
			return persist(tx, next)
		})
		if err == nil {
			s.metrics.IncAssigned(prefix.String())
			return number, nil
		}
		if !db.IsUniqueViolation(err, prefix.Column()) {
			return "", err
		}
		lastErr = err
		s.metrics.IncRetry(prefix.String())
		s.logg.WarnErr(ctx, "numbering.collision_retry", err)
	}

	return "", pkgerrors.Wrap(pkgerrors.CodeNumberingConflict, lastErr,
		fmt.Sprintf("could not assign a unique %s number after %d attempts", prefix, s.maxRetries+1))
}

// EnsureUnique fails with CONFLICT when value is already held by a request
// other than selfID. Call it inside the transaction that writes value.
func EnsureUnique(ctx context.Context, tx *gorm.DB, prefix enums.NumberPrefix, value string, selfID uint64) error {
	var holder models.Request
	err := tx.WithContext(ctx).
		Select("id").
		Where(prefix.Column()+" = ? AND id <> ?", value, selfID).
		Take(&holder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check number uniqueness")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("number %s is already used by request #%d", value, holder.ID)).
		WithDetails(map[string]any{"number": value, "holder_id": holder.ID})
}

// YearOf is the numbering year of a creation timestamp.
func YearOf(createdAt time.Time) int {
	return createdAt.UTC().Year()
}

func (s *Service) lock(ctx context.Context, tx *gorm.DB, prefix enums.NumberPrefix, year int) error {
	if !s.advisoryLocks {
		return nil
	}
	return tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", LockKey(prefix, year)).Error
}
