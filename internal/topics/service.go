package topics

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/angelmondragon/nazorat-backend/pkg/db"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"gorm.io/gorm"
)

const maxTitleRunes = 100

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type topicsRepository interface {
	WithTx(tx *gorm.DB) topicsRepository
	Create(ctx context.Context, topic *models.Topic) error
	FindByID(ctx context.Context, id uint64) (*models.Topic, error)
	List(ctx context.Context) ([]models.Topic, error)
	Update(ctx context.Context, id uint64, title, color string) error
	CountRequests(ctx context.Context, id uint64) (int64, error)
	Delete(ctx context.Context, id uint64) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Input carries the editable topic fields.
type Input struct {
	Title string `json:"title" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty"`
}

type Service struct {
	repo topicsRepository
	tx   txRunner
	logg *logger.Logger
}

func NewService(repo topicsRepository, tx txRunner, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("topics repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *Service) Create(ctx context.Context, input Input) (*models.Topic, error) {
	title, color, err := normalize(input)
	if err != nil {
		return nil, err
	}
	topic := &models.Topic{Title: title, Color: color}
	if err := s.repo.Create(ctx, topic); err != nil {
		return nil, translateWrite(err, title, "create topic")
	}
	s.logg.Info(s.logg.WithField(ctx, "topic_id", topic.ID), "topic.created")
	return topic, nil
}

// Rename replaces the title and color of an existing topic.
func (s *Service) Rename(ctx context.Context, id uint64, input Input) (*models.Topic, error) {
	title, color, err := normalize(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, title, color); err != nil {
		return nil, translateWrite(err, title, "update topic")
	}
	s.logg.Info(s.logg.WithField(ctx, "topic_id", id), "topic.updated")
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uint64) (*models.Topic, error) {
	topic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "topic not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load topic")
	}
	return topic, nil
}

func (s *Service) List(ctx context.Context) ([]models.Topic, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list topics")
	}
	return out, nil
}

// Delete removes a topic that no request references.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	ctx = s.logg.WithField(ctx, "topic_id", id)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "topic not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load topic")
		}
		n, err := repo.CountRequests(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count topic requests")
		}
		if n > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("topic is used by %d request(s)", n)).
				WithDetails(map[string]any{"topic_id": id, "requests": n})
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete topic")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logg.Info(ctx, "topic.deleted")
	return nil
}

func normalize(input Input) (string, string, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if len([]rune(title)) > maxTitleRunes {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("title must be at most %d characters", maxTitleRunes))
	}
	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = models.DefaultTopicColor
	}
	if !colorPattern.MatchString(color) {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "color must look like #RRGGBB").
			WithDetails(map[string]any{"color": input.Color})
	}
	return title, color, nil
}

func translateWrite(err error, title, action string) error {
	if db.IsUniqueViolation(err, "title") {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("topic %q already exists", title))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
