package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/nazorat-backend/pkg/config"
	"github.com/angelmondragon/nazorat-backend/pkg/db"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"gorm.io/gorm"
)

type usersRepository interface {
	WithTx(tx *gorm.DB) usersRepository
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	CountByRole(ctx context.Context, role enums.UserRole) (int64, error)
	UpdateRole(ctx context.Context, id uint64, role enums.UserRole) error
	Delete(ctx context.Context, id uint64) error
	DetachRequests(ctx context.Context, userID uint64) (int64, error)
	DeleteRequests(ctx context.Context, userID uint64) ([]string, int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

type mediaRemover interface {
	Remove(name string) error
}

// Service manages accounts.
type Service struct {
	repo   usersRepository
	tx     txRunner
	hasher passwordHasher
	media  mediaRemover
	admin  config.AdminConfig
	logg   *logger.Logger
}

func NewService(repo usersRepository, tx txRunner, hasher passwordHasher, media mediaRemover, admin config.AdminConfig, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	if media == nil {
		return nil, fmt.Errorf("media remover required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{repo: repo, tx: tx, hasher: hasher, media: media, admin: admin, logg: logg}, nil
}

func (s *Service) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	if input.Role != "" && !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be user or admin")
	}
	if input.FullName != nil {
		trimmed := strings.TrimSpace(*input.FullName)
		input.FullName = &trimmed
		if trimmed == "" {
			input.FullName = nil
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := input.toModel(hash)
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "username") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("username %q is already taken", input.Username))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user.created")
	return user, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err, "user not found", "load user")
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return out, nil
}

// Delete removes a user. In keep mode their requests stay with user_id
// cleared; in with_requests mode the requests go too and their media files
// are removed once the transaction has committed. The last admin cannot be
// deleted.
func (s *Service) Delete(ctx context.Context, userID uint64, mode enums.UserDeleteMode) (*DeleteResult, error) {
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mode must be keep or with_requests")
	}
	ctx = s.logg.WithUserID(ctx, userID)

	result := &DeleteResult{UserID: userID, Mode: mode}
	var media []string

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			return translateLookup(err, "user not found", "load user")
		}
		if user.IsAdmin() {
			admins, err := repo.CountByRole(ctx, enums.UserRoleAdmin)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
			}
			if admins <= 1 {
				return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete the last administrator")
			}
		}

		switch mode {
		case enums.UserDeleteKeep:
			n, err := repo.DetachRequests(ctx, userID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach requests")
			}
			result.DetachedCount = n
		case enums.UserDeleteWithRequests:
			names, n, err := repo.DeleteRequests(ctx, userID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete requests")
			}
			media = names
			result.DeletedRequests = n
		}

		if err := repo.Delete(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
		}
		return nil
	})
	if err != nil {
		s.logg.WarnErr(ctx, "user.delete_rolled_back", err)
		return nil, err
	}

	for _, name := range media {
		if err := s.media.Remove(name); err != nil {
			s.logg.WarnErr(s.logg.WithField(ctx, "media_filename", name), "user.media_remove_failed", err)
		}
	}

	s.logg.Info(s.logg.WithField(ctx, "delete_mode", string(mode)), "user.deleted")
	return result, nil
}

// BootstrapAdmin makes sure at least one administrator exists, creating the
// configured account when none does. An existing non-admin account with the
// configured username is promoted instead. Reports whether anything changed.
func (s *Service) BootstrapAdmin(ctx context.Context) (*models.User, bool, error) {
	admins, err := s.repo.CountByRole(ctx, enums.UserRoleAdmin)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
	}
	if admins > 0 {
		return nil, false, nil
	}

	username := strings.TrimSpace(s.admin.Username)
	if username == "" {
		username = "admin"
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if err := s.repo.UpdateRole(ctx, existing.ID, enums.UserRoleAdmin); err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote admin")
		}
		existing.Role = enums.UserRoleAdmin
		s.logg.Warn(s.logg.WithUserID(ctx, existing.ID), "user.bootstrap_admin_promoted")
		return existing, true, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}

	user, err := s.Create(ctx, CreateUserInput{Username: username, Password: s.admin.Password, Role: enums.UserRoleAdmin})
	if err != nil {
		return nil, false, err
	}
	s.logg.Warn(s.logg.WithUserID(ctx, user.ID), "user.bootstrap_admin_created")
	return user, true, nil
}

func translateLookup(err error, notFound, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
