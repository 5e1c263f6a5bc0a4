package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/nazorat-backend/internal/numbering"
	"github.com/angelmondragon/nazorat-backend/pkg/db"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"github.com/angelmondragon/nazorat-backend/pkg/pagination"
	"github.com/angelmondragon/nazorat-backend/pkg/types"
	"gorm.io/gorm"
)

const maxDocumentNumberLen = 100

var errDocumentNumberSet = errors.New("document number already set")

type requestsRepository interface {
	WithTx(tx *gorm.DB) requestsRepository
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, id uint64) (*models.Request, error)
	Save(ctx context.Context, req *models.Request) error
	Delete(ctx context.Context, id uint64) error
	TopicExists(ctx context.Context, id uint64) (bool, error)
	UserExists(ctx context.Context, id uint64) (bool, error)
	FindDetail(ctx context.Context, id uint64) (*Detail, error)
	List(ctx context.Context, params ListParams, cursor *pagination.Cursor) ([]Detail, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type numberer interface {
	Assign(ctx context.Context, prefix enums.NumberPrefix, year int, persist numbering.PersistFunc) (string, error)
}

type mediaRemover interface {
	Remove(name string) error
}

type ServiceParams struct {
	Repo      requestsRepository
	Tx        txRunner
	Numbering numberer
	Media     mediaRemover
	Logger    *logger.Logger
	Clock     func() time.Time
}

// Service owns the request lifecycle: submission, admin review and removal.
type Service struct {
	repo      requestsRepository
	tx        txRunner
	numbering numberer
	media     mediaRemover
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Numbering == nil {
		return nil, fmt.Errorf("numbering service required")
	}
	if p.Media == nil {
		return nil, fmt.Errorf("media remover required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Clock == nil {
		p.Clock = time.Now
	}
	return &Service{
		repo:      p.Repo,
		tx:        p.Tx,
		numbering: p.Numbering,
		media:     p.Media,
		logg:      p.Logger,
		now:       p.Clock,
	}, nil
}

// Create files a new request and assigns its registration number in the
// same transaction. The request starts unread, so it derives to new.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Request, error) {
	if input.TopicID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "topic is required").
			WithDetails(map[string]any{"field": "topic_id"})
	}
	coords, err := types.PairCoordinates(input.Latitude, input.Longitude)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	ok, err := s.repo.TopicExists(ctx, input.TopicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load topic")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "topic not found")
	}
	if input.UserID != nil {
		ok, err := s.repo.UserExists(ctx, *input.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		ctx = s.logg.WithUserID(ctx, *input.UserID)
	}

	now := s.now().UTC()
	var created *models.Request
	_, err = s.numbering.Assign(ctx, enums.NumberPrefixRegistration, numbering.YearOf(now), func(tx *gorm.DB, number string) error {
		req := newRequest(input, coords, now)
		req.RegNumber = &number
		if err := s.repo.WithTx(tx).Create(ctx, req); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "create request")
	}

	s.logg.Info(s.logg.WithFields(s.logg.WithRequestRecord(ctx, created.ID), map[string]any{
		"reg_number": *created.RegNumber,
	}), "request.created")
	return created, nil
}

func newRequest(input CreateInput, coords *types.Coordinates, now time.Time) *models.Request {
	req := &models.Request{
		UserID:    input.UserID,
		TopicID:   input.TopicID,
		Comment:   strings.TrimSpace(input.Comment),
		Status:    enums.RequestStatusUnderReview,
		CreatedAt: now,
	}
	if coords != nil {
		lat, lng := coords.Lat, coords.Lng
		req.Latitude, req.Longitude = &lat, &lng
	}
	if input.MediaFilename != nil && strings.TrimSpace(*input.MediaFilename) != "" {
		name := strings.TrimSpace(*input.MediaFilename)
		req.MediaFilename = &name
	}
	return req
}

// Get returns the request detail when the actor owns it or is an admin.
func (s *Service) Get(ctx context.Context, actor types.Actor, id uint64) (*Detail, error) {
	detail, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, translateLookup(err)
	}
	if !actor.CanView(detail.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request belongs to another user")
	}
	return detail, nil
}

// List pages through requests newest first. Non-admins only see their own.
func (s *Service) List(ctx context.Context, actor types.Actor, params ListParams) (pagination.Page[Detail], error) {
	if !actor.IsAdmin() {
		own := actor.ID
		params.UserID = &own
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Detail]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, params, cursor)
	if err != nil {
		return pagination.Page[Detail]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}
	return pagination.Trim(rows, params.Limit, cursorOf), nil
}

// MarkAdminRead records the first admin view. Later calls change nothing.
func (s *Service) MarkAdminRead(ctx context.Context, id uint64) (*models.Request, error) {
	return s.mutate(ctx, id, "request.marked_read", func(_ *gorm.DB, req *models.Request, now time.Time) (bool, error) {
		return markSeen(req, now), nil
	})
}

// SetStatus moves the request between under_review and completed.
func (s *Service) SetStatus(ctx context.Context, id uint64, value string) (*models.Request, error) {
	status, err := ValidateStatus(value)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, "request.status_changed", func(_ *gorm.DB, req *models.Request, now time.Time) (bool, error) {
		applyStatus(req, status, now)
		return true, nil
	})
}

// SetReply stores or clears the admin reply. markCompleted picks completed,
// otherwise the request goes back to under_review.
func (s *Service) SetReply(ctx context.Context, id uint64, text *string, markCompleted bool) (*models.Request, error) {
	return s.mutate(ctx, id, "request.replied", func(_ *gorm.DB, req *models.Request, now time.Time) (bool, error) {
		applyReply(req, text, markCompleted, now)
		return true, nil
	})
}

// CorrectRegNumber replaces the registration number after checking that no
// other request holds it.
func (s *Service) CorrectRegNumber(ctx context.Context, id uint64, value string) (*models.Request, error) {
	number, err := numbering.ValidateManualRegNumber(value)
	if err != nil {
		return nil, err
	}
	req, err := s.mutate(ctx, id, "request.reg_number_corrected", func(tx *gorm.DB, req *models.Request, now time.Time) (bool, error) {
		if req.RegNumber != nil && *req.RegNumber == number {
			return markSeen(req, now), nil
		}
		if err := numbering.EnsureUnique(ctx, tx, enums.NumberPrefixRegistration, number, req.ID); err != nil {
			return false, err
		}
		markSeen(req, now)
		req.RegNumber = &number
		return true, nil
	})
	if err != nil && db.IsUniqueViolation(err, enums.NumberPrefixRegistration.Column()) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("number %s is already in use", number))
	}
	return req, err
}

// AssignDocumentNumber gives the request the next DOC number of the current
// year. A request that already has a document number is returned unchanged.
func (s *Service) AssignDocumentNumber(ctx context.Context, id uint64) (*models.Request, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err)
	}
	if hasText(current.DocumentNumber) {
		return current, nil
	}

	ctx = s.logg.WithRequestRecord(ctx, id)
	now := s.now().UTC()
	var updated *models.Request
	_, err = s.numbering.Assign(ctx, enums.NumberPrefixDocument, numbering.YearOf(now), func(tx *gorm.DB, number string) error {
		repo := s.repo.WithTx(tx)
		req, err := repo.FindByID(ctx, id)
		if err != nil {
			return translateLookup(err)
		}
		if hasText(req.DocumentNumber) {
			updated = req
			return errDocumentNumberSet
		}
		markSeen(req, now)
		req.DocumentNumber = &number
		if err := repo.Save(ctx, req); err != nil {
			return err
		}
		updated = req
		return nil
	})
	switch {
	case errors.Is(err, errDocumentNumberSet):
		return updated, nil
	case err != nil:
		return nil, asTyped(err, "assign document number")
	}
	s.logg.Info(s.logg.WithField(ctx, "document_number", *updated.DocumentNumber), "request.document_number_assigned")
	return updated, nil
}

// SetDocumentNumber stores a free-form document number; nil or blank clears it.
func (s *Service) SetDocumentNumber(ctx context.Context, id uint64, value *string) (*models.Request, error) {
	var next *string
	if value != nil && strings.TrimSpace(*value) != "" {
		trimmed := strings.TrimSpace(*value)
		if len([]rune(trimmed)) > maxDocumentNumberLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("document number must be at most %d characters", maxDocumentNumberLen))
		}
		next = &trimmed
	}
	return s.mutate(ctx, id, "request.document_number_set", func(_ *gorm.DB, req *models.Request, now time.Time) (bool, error) {
		markSeen(req, now)
		req.DocumentNumber = next
		return true, nil
	})
}

// Delete removes the request, then its media file once the row is gone.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	ctx = s.logg.WithRequestRecord(ctx, id)
	var media *string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		req, err := repo.FindByID(ctx, id)
		if err != nil {
			return translateLookup(err)
		}
		media = req.MediaFilename
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete request")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if hasText(media) {
		if err := s.media.Remove(*media); err != nil {
			s.logg.WarnErr(s.logg.WithField(ctx, "media_filename", *media), "request.media_remove_failed", err)
		}
	}
	s.logg.Info(ctx, "request.deleted")
	return nil
}

type mutation func(tx *gorm.DB, req *models.Request, now time.Time) (bool, error)

// mutate loads the request inside a transaction, applies fn and writes the
// editable columns back when fn reports a change.
func (s *Service) mutate(ctx context.Context, id uint64, event string, fn mutation) (*models.Request, error) {
	ctx = s.logg.WithRequestRecord(ctx, id)
	now := s.now()

	var out *models.Request
	var changed bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		req, err := repo.FindByID(ctx, id)
		if err != nil {
			return translateLookup(err)
		}
		changed, err = fn(tx, req, now)
		if err != nil {
			return err
		}
		if changed {
			if err := repo.Save(ctx, req); err != nil {
				return err
			}
		}
		out = req
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			s.logg.WarnErr(ctx, event+"_rolled_back", err)
		}
		return nil, asTyped(err, "update request")
	}

	if changed {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"status":           string(out.Status),
			"effective_status": string(EffectiveOf(out)),
		}), event)
	}
	return out, nil
}

func hasText(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

func translateLookup(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
}

func asTyped(err error, action string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
