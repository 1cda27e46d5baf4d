package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecoreport/api-go/auth"
	"github.com/ecoreport/api-go/config"
	"github.com/ecoreport/api-go/middleware"
	"github.com/ecoreport/api-go/models"
	"github.com/ecoreport/api-go/services"
	"github.com/ecoreport/api-go/storage"
	"github.com/ecoreport/api-go/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type APISuite struct {
	suite.Suite

	router  *gin.Engine
	users   *services.UserService
	reports *services.ReportService
	images  *services.ImageService
	uploads string
	now     time.Time
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB(&config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseURL: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	s.Require().NoError(err)
	s.Require().NoError(config.Migrate(db))
	s.T().Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	s.uploads = filepath.Join(s.T().TempDir(), "uploads")
	store, err := storage.New(context.Background(), &config.Config{
		StorageBackend: config.StorageLocal,
		UploadFolder:   s.uploads,
	})
	s.Require().NoError(err)

	s.now = time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }

	log := zap.NewNop()
	tokens := auth.NewTokenService([]byte("route-test-secret"), auth.TokenTTL)
	s.users = services.NewUserService(db, store, tokens, log)
	s.reports = services.NewReportService(db, store, log)
	s.reports.Now = clock
	s.images = services.NewImageService(db, store, log, config.MaxUploadBytes)
	s.images.Now = clock

	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)

	s.router = gin.New()
	s.router.Use(middleware.Logger(log), middleware.CORS([]string{"*"}), metrics.Handler())
	SetupRoutes(s.router, Deps{
		Tokens:     tokens,
		Users:      s.users,
		Reports:    s.reports,
		Images:     s.images,
		Statistics: services.NewStatisticsService(db),
		Metrics:    metrics,
		Gatherer:   reg,
	})
}

func (s *APISuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APISuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *APISuite) register(name, email string) {
	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": name, "email": email, "password": "secret123"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *APISuite) login(email, password string) string {
	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp types.LoginResponse
	s.decode(w, &resp)
	s.Equal("Bearer", resp.TokenType)
	s.Equal(int64(auth.TokenTTL.Seconds()), resp.ExpiresIn)
	s.Require().NotNil(resp.User)
	return resp.Token
}

func (s *APISuite) adminToken() string {
	_, err := s.users.EnsureAdmin(context.Background(), "Root", "root@x.com", "rootpass")
	s.Require().NoError(err)
	return s.login("root@x.com", "rootpass")
}

func (s *APISuite) createReport(token, title string) models.Report {
	w := s.do(http.MethodPost, "/api/reports", token, gin.H{"title": title, "description": "...", "type": "water"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var report models.Report
	s.decode(w, &report)
	return report
}

func (s *APISuite) TestReportLifecycle() {
	s.register("A", "a@x.com")
	tokenA := s.login("a@x.com", "secret123")
	created := s.createReport(tokenA, "Spill")

	w := s.do(http.MethodGet, "/api/reports", tokenA, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var listed []models.Report
	s.decode(w, &listed)
	s.Require().Len(listed, 1)
	s.Equal("Spill", listed[0].Title)
	s.Equal(models.StatusPending, listed[0].Status)

	s.register("B", "b@x.com")
	tokenB := s.login("b@x.com", "secret123")
	w = s.do(http.MethodGet, "/api/reports/"+itoa(created.ID), tokenB, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/reports", tokenB, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())

	s.now = s.now.Add(time.Minute)
	admin := s.adminToken()
	w = s.do(http.MethodPut, "/api/reports/"+itoa(created.ID), admin, gin.H{"status": models.StatusResolved})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/reports/"+itoa(created.ID), tokenA, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var seen models.Report
	s.decode(w, &seen)
	s.Equal(models.StatusResolved, seen.Status)
	s.True(seen.UpdatedAt.After(created.UpdatedAt))

	// Owners cannot move their own report through the workflow.
	w = s.do(http.MethodPut, "/api/reports/"+itoa(created.ID), tokenA, gin.H{"status": models.StatusRejected, "title": "Oil spill"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &seen)
	s.Equal(models.StatusResolved, seen.Status)
	s.Equal("Oil spill", seen.Title)
}

func (s *APISuite) TestAuthErrors() {
	w := s.do(http.MethodGet, "/api/reports", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/reports", "garbage", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.JSONEq(`{"error":"invalid or expired token"}`, w.Body.String())

	s.register("A", "a@x.com")
	w = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "A2", "email": "A@x.com", "password": "secret123"})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@x.com", "password": "wrong-one"})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.JSONEq(`{"error":"invalid email or password"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "C", "email": "nope"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestUsersEndpoints() {
	s.register("A", "a@x.com")
	tokenA := s.login("a@x.com", "secret123")
	admin := s.adminToken()

	w := s.do(http.MethodGet, "/api/auth/me", tokenA, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var me models.User
	s.decode(w, &me)
	s.Equal("a@x.com", me.Email)
	s.NotContains(w.Body.String(), "password")

	w = s.do(http.MethodGet, "/api/users", tokenA, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/users", admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var all []models.User
	s.decode(w, &all)
	s.Len(all, 2)

	w = s.do(http.MethodPut, "/api/users/"+itoa(me.ID), tokenA, gin.H{"name": "Alice", "role": "admin"})
	s.Require().Equal(http.StatusOK, w.Code)
	var updated models.User
	s.decode(w, &updated)
	s.Equal("Alice", updated.Name)
	s.Equal(models.RoleUser, updated.Role)

	w = s.do(http.MethodGet, "/api/users/abc", tokenA, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/users/"+itoa(me.ID), tokenA, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/users/"+itoa(me.ID), admin, nil)
	s.Equal(http.StatusOK, w.Code)

	// The token outlives the account; creating with it must fail cleanly.
	w = s.do(http.MethodPost, "/api/reports", tokenA, gin.H{"title": "t", "description": "d", "type": "air"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APISuite) TestImageUploadDownloadAndCascade() {
	s.register("A", "a@x.com")
	tokenA := s.login("a@x.com", "secret123")
	report := s.createReport(tokenA, "Spill")

	w := s.upload(tokenA, report.ID, "river.png", []byte("\x89PNG fake"))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var image models.ReportImage
	s.decode(w, &image)
	s.FileExists(image.FilePath)

	w = s.upload(tokenA, report.ID, "notes.txt", []byte("text"))
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/images/"+itoa(image.ID), tokenA, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("image/png", w.Header().Get("Content-Type"))
	s.Equal("\x89PNG fake", w.Body.String())

	w = s.do(http.MethodGet, "/api/reports/"+itoa(report.ID), tokenA, nil)
	var withImages models.Report
	s.decode(w, &withImages)
	s.Len(withImages.Images, 1)

	w = s.do(http.MethodDelete, "/api/reports/"+itoa(report.ID), tokenA, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.NoFileExists(image.FilePath)

	w = s.do(http.MethodGet, "/api/images/"+itoa(image.ID), tokenA, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestStatistics() {
	s.register("A", "a@x.com")
	tokenA := s.login("a@x.com", "secret123")
	s.createReport(tokenA, "Spill")

	w := s.do(http.MethodGet, "/api/statistics", tokenA, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/statistics", s.adminToken(), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var stats types.Statistics
	s.decode(w, &stats)
	s.Equal(int64(1), stats.TotalReports)
	s.Equal(int64(1), stats.ByStatus[models.StatusPending])
	s.Equal(int64(1), stats.ByType["water"])
	s.Len(stats.MonthlyData, services.StatisticsMonths)
}

func (s *APISuite) TestIndexAndMetrics() {
	w := s.do(http.MethodGet, "/", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"Environmental Complaints API","version":"1.0.0","status":"online"}`, w.Body.String())

	w = s.do(http.MethodGet, "/metrics", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "ecoreport_http_requests_total")
}

func (s *APISuite) upload(token string, reportID uint, filename string, content []byte) *httptest.ResponseRecorder {
	return s.uploadFrom(token, reportID, filename, content, nil)
}

// uploadFrom posts a multipart upload. When read is non-nil it receives the
// number of body bytes the server consumed.
func (s *APISuite) uploadFrom(token string, reportID uint, filename string, content []byte, read *int64) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	var reader io.Reader = &body
	if read != nil {
		reader = &countingReader{r: &body, n: read}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/reports/"+itoa(reportID)+"/images", reader)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APISuite) TestUploadWithoutFilePart() {
	s.register("A", "a@x.com")
	token := s.login("a@x.com", "secret123")
	report := s.createReport(token, "Spill")

	req := httptest.NewRequest(http.MethodPost, "/api/reports/"+itoa(report.ID)+"/images", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"no image part"}`, w.Body.String())
}

func (s *APISuite) TestUploadWithEmptyFilename() {
	s.register("A", "a@x.com")
	token := s.login("a@x.com", "secret123")
	report := s.createReport(token, "Spill")

	w := s.upload(token, report.ID, "", []byte{})

	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"no selected file"}`, w.Body.String())
}

func (s *APISuite) TestOversizedUploadIsCutOff() {
	s.register("A", "a@x.com")
	token := s.login("a@x.com", "secret123")
	report := s.createReport(token, "Spill")
	s.images.MaxBytes = 1024

	var read int64
	content := bytes.Repeat([]byte("x"), 1<<20)
	w := s.uploadFrom(token, report.ID, "huge.png", content, &read)

	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"file too large"}`, w.Body.String())
	s.LessOrEqual(read, s.images.MaxRequestBytes()+1)

	entries, err := os.ReadDir(s.uploads)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *APISuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/reports", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
	s.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	s.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}
