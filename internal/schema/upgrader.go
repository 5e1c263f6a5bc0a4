package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"github.com/angelmondragon/nazorat-backend/pkg/metrics"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Step is one idempotent schema change. Apply runs inside the transaction
// that also records the step, and must guard itself with capability checks
// so it is safe on stores that already have the change.
type Step struct {
	Name  string
	Apply func(ctx context.Context, tx *gorm.DB) error
}

// StepFailure is a step that rolled back.
type StepFailure struct {
	Name string `json:"name"`
	Err  string `json:"error"`
}

// Report summarizes one upgrade run.
type Report struct {
	Applied []string      `json:"applied"`
	Skipped []string      `json:"skipped"`
	Failed  []StepFailure `json:"failed"`
}

func (r Report) OK() bool { return len(r.Failed) == 0 }

// Upgrader applies the ordered step list against the store.
type Upgrader struct {
	db      txRunner
	steps   []Step
	logg    *logger.Logger
	metrics *metrics.UpgradeMetrics
	now     func() time.Time
}

type Option func(*Upgrader)

func WithSteps(steps []Step) Option {
	return func(u *Upgrader) { u.steps = steps }
}

func WithMetrics(m *metrics.UpgradeMetrics) Option {
	return func(u *Upgrader) { u.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(u *Upgrader) { u.now = now }
}

func NewUpgrader(db txRunner, logg *logger.Logger, opts ...Option) (*Upgrader, error) {
	if db == nil {
		return nil, fmt.Errorf("database client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	u := &Upgrader{
		db:   db,
		logg: logg,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.steps == nil {
		u.steps = Steps(u.now)
	}
	return u, nil
}

// Run applies every pending step in order. A failing step is rolled back,
// logged and reported; later steps still run. The returned error aggregates
// every failure as SCHEMA_MIGRATION_ERROR and is nil when all steps are in
// place.
func (u *Upgrader) Run(ctx context.Context) (Report, error) {
	report := Report{}

	if err := u.ensureLedger(ctx); err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeSchemaMigration, err, "create schema_upgrades ledger")
		u.logg.Error(ctx, "schema.ledger_unavailable", wrapped)
		return report, wrapped
	}

	applied, err := u.appliedSet(ctx)
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeSchemaMigration, err, "read schema_upgrades ledger")
		u.logg.Error(ctx, "schema.ledger_unreadable", wrapped)
		return report, wrapped
	}

	var errs error
	for _, step := range u.steps {
		stepCtx := u.logg.WithField(ctx, "upgrade_step", step.Name)
		if applied[step.Name] {
			u.metrics.IncSkipped(step.Name)
			u.logg.Debug(stepCtx, "schema.step_skipped")
			report.Skipped = append(report.Skipped, step.Name)
			continue
		}

		started := time.Now()
		err := u.db.WithTx(ctx, func(tx *gorm.DB) error {
			if err := step.Apply(ctx, tx); err != nil {
				return err
			}
			return tx.Create(&models.SchemaUpgrade{Name: step.Name, AppliedAt: u.now().UTC()}).Error
		})
		u.metrics.ObserveDuration(step.Name, time.Since(started))

		if err != nil {
			wrapped := pkgerrors.Wrap(pkgerrors.CodeSchemaMigration, err, "upgrade step "+step.Name)
			u.metrics.IncFailure(step.Name)
			u.logg.Error(stepCtx, "schema.step_failed", wrapped)
			report.Failed = append(report.Failed, StepFailure{Name: step.Name, Err: err.Error()})
			errs = multierr.Append(errs, wrapped)
			continue
		}

		u.metrics.IncApplied(step.Name)
		u.logg.Info(stepCtx, "schema.step_applied")
		report.Applied = append(report.Applied, step.Name)
	}

	return report, errs
}

func (u *Upgrader) ensureLedger(ctx context.Context) error {
	migrator := u.db.DB().WithContext(ctx).Migrator()
	if migrator.HasTable(&models.SchemaUpgrade{}) {
		return nil
	}
	return migrator.CreateTable(&models.SchemaUpgrade{})
}

func (u *Upgrader) appliedSet(ctx context.Context) (map[string]bool, error) {
	var names []string
	if err := u.db.DB().WithContext(ctx).Model(&models.SchemaUpgrade{}).Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}
