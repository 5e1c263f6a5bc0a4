package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/nazorat-backend/api/middleware"
	"github.com/angelmondragon/nazorat-backend/internal/dbtest"
	"github.com/angelmondragon/nazorat-backend/internal/media"
	"github.com/angelmondragon/nazorat-backend/internal/numbering"
	"github.com/angelmondragon/nazorat-backend/internal/reports"
	"github.com/angelmondragon/nazorat-backend/internal/requests"
	"github.com/angelmondragon/nazorat-backend/internal/statistics"
	"github.com/angelmondragon/nazorat-backend/internal/topics"
	"github.com/angelmondragon/nazorat-backend/internal/users"
	"github.com/angelmondragon/nazorat-backend/pkg/config"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"github.com/angelmondragon/nazorat-backend/pkg/metrics"
	"github.com/angelmondragon/nazorat-backend/pkg/security"
)

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

type harness struct {
	handler http.Handler
	conn    *gorm.DB
	dir     string
	admin   *models.User
	citizen *models.User
	other   *models.User
	topic   *models.Topic
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn := dbtest.Open(t)
	client := dbtest.Client(conn)
	clock := func() time.Time { return fixedNow }
	reg := prometheus.NewRegistry()

	cfg := &config.Config{
		App: config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}},
		Media: config.MediaConfig{
			UploadDir:         t.TempDir(),
			MaxUploadMB:       1,
			AllowedExtensions: []string{"png", "jpg", "mp4"},
		},
		Reports: config.ReportsConfig{
			ImageWidthInches: 5, ImageMaxPixels: 1600, JPEGQuality: 90,
			WorkerRowCap: 50, WordCommentLimit: 50, XLSXCommentLimit: 100, TimeZone: "UTC",
		},
		Admin: config.AdminConfig{Username: "admin", Password: "admin123"},
	}

	store, err := media.NewStore(cfg.Media)
	require.NoError(t, err)
	num, err := numbering.NewService(client, numbering.Options{Metrics: metrics.NewNumberingMetrics(reg)})
	require.NoError(t, err)
	requestRepo := requests.NewRepository(conn)
	requestSvc, err := requests.NewService(requests.ServiceParams{
		Repo: requestRepo, Tx: client, Numbering: num, Media: store, Clock: clock,
	})
	require.NoError(t, err)
	topicSvc, err := topics.NewService(topics.NewRepository(conn), client, nil)
	require.NoError(t, err)
	userSvc, err := users.NewService(users.NewRepository(conn), client, security.NewHasher(config.PasswordConfig{}), store, cfg.Admin, nil)
	require.NoError(t, err)
	statsSvc, err := statistics.NewService(statistics.Params{DB: conn, Requests: requestRepo, Clock: clock})
	require.NoError(t, err)
	renderer := reports.NewRenderer(cfg.Reports, reports.Options{Clock: clock, Metrics: metrics.NewReportMetrics(reg)})

	h := &harness{
		handler: NewRouter(Deps{
			Config: cfg, Logger: logger.Nop(), DB: client, Gatherer: reg,
			Requests: requestSvc, Media: store, Topics: topicSvc, Users: userSvc,
			Statistics: statsSvc, Reports: renderer,
		}),
		conn: conn,
		dir:  cfg.Media.UploadDir,
	}
	h.admin = dbtest.SeedUser(t, conn, "admin", enums.UserRoleAdmin)
	h.citizen = dbtest.SeedUser(t, conn, "karim", enums.UserRoleUser)
	h.other = dbtest.SeedUser(t, conn, "nodir", enums.UserRoleUser)
	h.topic = dbtest.SeedTopic(t, conn, "Роҳ")
	return h
}

func (h *harness) do(t *testing.T, method, path string, actor *models.User, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	authenticate(req, actor)
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	return resp
}

func authenticate(req *http.Request, actor *models.User) {
	if actor == nil {
		return
	}
	req.Header.Set(middleware.ActorIDHeader, fmt.Sprint(actor.ID))
	req.Header.Set(middleware.ActorRoleHeader, string(actor.Role))
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), resp.Body.String())
	return out
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env.Error.Code
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dev", resp.Header().Get("X-Nazorat-Env"))

	h.do(t, http.MethodPost, "/api/v1/requests", h.citizen, map[string]any{"topic_id": h.topic.ID})
	resp = h.do(t, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "numbering_assigned_total")
}

func TestCitizenSubmitsAndReadsOwnRequest(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/v1/requests", h.citizen, map[string]any{
		"topic_id": h.topic.ID, "latitude": 38.56, "longitude": 68.78, "comment": " Чуқурӣ ",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode[requests.Detail](t, resp)
	require.NotNil(t, created.RegNumber)
	assert.Equal(t, "NAZ-2025-0001", *created.RegNumber)
	assert.Equal(t, enums.EffectiveStatusNew, created.Effective)
	assert.Equal(t, "Чуқурӣ", created.Comment)

	path := fmt.Sprintf("/api/v1/requests/%d", created.ID)
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, path, h.citizen, nil).Code)

	resp = h.do(t, http.MethodGet, path, h.other, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, resp))

	resp = h.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	page := decode[struct {
		Items []requests.Detail `json:"items"`
	}](t, h.do(t, http.MethodGet, "/api/v1/requests", h.other, nil))
	assert.Empty(t, page.Items, "other citizens see only their own requests")
}

func TestCreateRequestValidation(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/v1/requests", h.citizen, map[string]any{"comment": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = h.do(t, http.MethodPost, "/api/v1/requests", h.citizen, map[string]any{"topic_id": h.topic.ID, "latitude": 38.5})
	assert.Equal(t, http.StatusBadRequest, resp.Code, "latitude without longitude")

	resp = h.do(t, http.MethodPost, "/api/v1/requests", h.citizen, map[string]any{"topic_id": 999})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMultipartUploadStoresMedia(t *testing.T) {
	h := newHarness(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("topic_id", fmt.Sprint(h.topic.ID)))
	require.NoError(t, mw.WriteField("comment", "видео"))
	part, err := mw.CreateFormFile("media", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a video"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	authenticate(req, h.citizen)
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	created := decode[requests.Detail](t, resp)
	require.NotNil(t, created.MediaFilename)
	assert.True(t, strings.HasSuffix(*created.MediaFilename, ".mp4"))
	_, err = os.Stat(filepath.Join(h.dir, *created.MediaFilename))
	assert.NoError(t, err)
}

func TestAdminWorkflow(t *testing.T) {
	h := newHarness(t)
	created := decode[requests.Detail](t, h.do(t, http.MethodPost, "/api/v1/requests", h.citizen, map[string]any{"topic_id": h.topic.ID}))
	base := fmt.Sprintf("/api/admin/v1/requests/%d", created.ID)

	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodGet, base, h.citizen, nil).Code)

	opened := decode[requests.Detail](t, h.do(t, http.MethodGet, base, h.admin, nil))
	assert.Equal(t, enums.EffectiveStatusUnderReview, opened.Effective)
	require.NotNil(t, opened.AdminReadAt)

	resp := h.do(t, http.MethodPost, base+"/status", h.admin, map[string]any{"status": "rejected"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	reply := "Таъмир шуд"
	done := decode[requests.Detail](t, h.do(t, http.MethodPost, base+"/reply", h.admin, map[string]any{"reply": reply, "mark_completed": true}))
	assert.Equal(t, enums.EffectiveStatusCompleted, done.Effective)

	doc := decode[requests.Detail](t, h.do(t, http.MethodPost, base+"/document-number", h.admin, map[string]any{"assign": true}))
	require.NotNil(t, doc.DocumentNumber)
	assert.Equal(t, "DOC-2025-0001", *doc.DocumentNumber)

	fixed := decode[requests.Detail](t, h.do(t, http.MethodPost, base+"/reg-number", h.admin, map[string]any{"reg_number": "naz-2024-0042"}))
	assert.Equal(t, "NAZ-2024-0042", *fixed.RegNumber)

	resp = h.do(t, http.MethodGet, base+"/protocol", h.admin, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, `attachment; filename="protocol_NAZ-2024-0042_20250314_100000.docx"`, resp.Header().Get("Content-Disposition"))

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodDelete, base, h.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, base, h.admin, nil).Code)
}

func TestAdminTopicsAndUsers(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/admin/v1/topics", h.admin, map[string]any{"title": "Об"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	topic := decode[models.Topic](t, resp)
	assert.Equal(t, models.DefaultTopicColor, topic.Color)

	assert.Equal(t, http.StatusConflict, h.do(t, http.MethodPost, "/api/admin/v1/topics", h.admin, map[string]any{"title": "Об"}).Code)

	h.do(t, http.MethodPost, "/api/v1/requests", h.citizen, map[string]any{"topic_id": h.topic.ID})
	resp = h.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/v1/topics/%d", h.topic.ID), h.admin, nil)
	assert.Equal(t, http.StatusConflict, resp.Code)

	listed := decode[[]models.Topic](t, h.do(t, http.MethodGet, "/api/v1/topics", nil, nil))
	assert.Len(t, listed, 2)

	resp = h.do(t, http.MethodPost, "/api/admin/v1/users", h.admin, map[string]any{"username": "zarina", "password": "secret1"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.NotContains(t, resp.Body.String(), "password")

	resp = h.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/v1/users/%d?mode=with_requests", h.citizen.ID), h.admin, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var remaining int64
	require.NoError(t, h.conn.Model(&models.Request{}).Count(&remaining).Error)
	assert.Zero(t, remaining)

	resp = h.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/v1/users/%d?mode=everything", h.other.ID), h.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStatisticsAndExports(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/api/v1/requests", h.citizen, map[string]any{"topic_id": h.topic.ID})

	res := decode[statistics.Result](t, h.do(t, http.MethodGet, "/api/admin/v1/statistics?from=2025-03-01&to=2025-03-31", h.admin, nil))
	assert.EqualValues(t, 1, res.TotalRequests)
	assert.EqualValues(t, 1, res.NewRequests)
	assert.Len(t, res.Daily, 31)

	resp := h.do(t, http.MethodGet, "/api/admin/v1/statistics/export?format=excel", h.admin, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, enums.ReportFormatExcel.ContentType(), resp.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="statistics_20250314_100000.xlsx"`, resp.Header().Get("Content-Disposition"))

	resp = h.do(t, http.MethodGet, "/api/admin/v1/statistics/export?format=pdf", h.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = h.do(t, http.MethodGet, fmt.Sprintf("/api/admin/v1/workers/%d/export", h.citizen.ID), h.admin, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, `attachment; filename="worker_statistics_karim_20250314_100000.docx"`, resp.Header().Get("Content-Disposition"))

	resp = h.do(t, http.MethodGet, "/api/admin/v1/statistics?from=2025-04-01&to=2025-03-01", h.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
