package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ecoreport/api-go/auth"
	"github.com/ecoreport/api-go/config"
	"github.com/ecoreport/api-go/models"
	"github.com/ecoreport/api-go/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseURL: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := config.OpenDB(cfg)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// memStore keeps files in memory and records every removal attempt.
type memStore struct {
	mu         sync.Mutex
	files      map[string][]byte
	saved      []string
	removed    []string
	failRemove bool
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (s *memStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := "mem/" + name
	s.files[path] = data
	s.saved = append(s.saved, path)
	return path, nil
}

func (s *memStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, storage.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Remove(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, path)
	if s.failRemove {
		return errors.New("disk on fire")
	}
	delete(s.files, path)
	return nil
}

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func seedUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedReport(t *testing.T, db *gorm.DB, owner *models.User, title, reportType string, createdAt time.Time) *models.Report {
	t.Helper()
	report := &models.Report{
		Title:       title,
		Description: "seeded",
		Type:        reportType,
		Status:      models.StatusPending,
		UserID:      owner.ID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, db.Create(report).Error)
	return report
}

func seedImage(t *testing.T, db *gorm.DB, store *memStore, report *models.Report, name string) *models.ReportImage {
	t.Helper()
	path, err := store.Save(context.Background(), name, bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	image := &models.ReportImage{Filename: name, FilePath: path, ReportID: report.ID}
	require.NoError(t, db.Create(image).Error)
	return image
}

func identityOf(u *models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.Role}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
