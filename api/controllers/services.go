package controllers

import (
	"context"
	"io"

	"github.com/angelmondragon/nazorat-backend/internal/reports"
	"github.com/angelmondragon/nazorat-backend/internal/requests"
	"github.com/angelmondragon/nazorat-backend/internal/statistics"
	"github.com/angelmondragon/nazorat-backend/internal/topics"
	"github.com/angelmondragon/nazorat-backend/internal/users"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	"github.com/angelmondragon/nazorat-backend/pkg/pagination"
	"github.com/angelmondragon/nazorat-backend/pkg/types"
)

// RequestService is the request workflow as the handlers use it.
type RequestService interface {
	Create(ctx context.Context, input requests.CreateInput) (*models.Request, error)
	Get(ctx context.Context, actor types.Actor, id uint64) (*requests.Detail, error)
	List(ctx context.Context, actor types.Actor, params requests.ListParams) (pagination.Page[requests.Detail], error)
	MarkAdminRead(ctx context.Context, id uint64) (*models.Request, error)
	SetStatus(ctx context.Context, id uint64, value string) (*models.Request, error)
	SetReply(ctx context.Context, id uint64, text *string, markCompleted bool) (*models.Request, error)
	CorrectRegNumber(ctx context.Context, id uint64, value string) (*models.Request, error)
	AssignDocumentNumber(ctx context.Context, id uint64) (*models.Request, error)
	SetDocumentNumber(ctx context.Context, id uint64, value *string) (*models.Request, error)
	Delete(ctx context.Context, id uint64) error
}

// MediaStore persists uploaded attachments.
type MediaStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Path(name string) (string, error)
	Remove(name string) error
}

type TopicService interface {
	Create(ctx context.Context, input topics.Input) (*models.Topic, error)
	Rename(ctx context.Context, id uint64, input topics.Input) (*models.Topic, error)
	List(ctx context.Context) ([]models.Topic, error)
	Delete(ctx context.Context, id uint64) error
}

type UserService interface {
	Create(ctx context.Context, input users.CreateUserInput) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, userID uint64, mode enums.UserDeleteMode) (*users.DeleteResult, error)
}

type StatisticsService interface {
	Aggregate(ctx context.Context, f statistics.Filter) (*statistics.Result, error)
	WorkerReport(ctx context.Context, workerID uint64, f statistics.Filter) (*statistics.WorkerReport, error)
}

// ReportRenderer produces downloadable documents.
type ReportRenderer interface {
	RenderStatistics(ctx context.Context, res *statistics.Result, format enums.ReportFormat) (*reports.Artifact, error)
	RenderWorkerStatistics(ctx context.Context, rep *statistics.WorkerReport, format enums.ReportFormat) (*reports.Artifact, error)
	RenderProtocol(ctx context.Context, d *requests.Detail, mediaPath string) (*reports.Artifact, error)
}
