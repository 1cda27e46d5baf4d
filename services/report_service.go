package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ecoreport/api-go/auth"
	"github.com/ecoreport/api-go/models"
	"github.com/ecoreport/api-go/policy"
	"github.com/ecoreport/api-go/storage"
	"github.com/ecoreport/api-go/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReportService struct {
	DB    *gorm.DB
	Store storage.Store
	Log   *zap.Logger
	Now   func() time.Time
}

func NewReportService(db *gorm.DB, store storage.Store, log *zap.Logger) *ReportService {
	return &ReportService{
		DB:    db,
		Store: store,
		Log:   log,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns the reports visible to the caller, newest first. Non-admins
// only ever see their own reports.
func (s *ReportService) List(ctx context.Context, caller auth.Identity, filter types.ReportFilter) ([]models.Report, error) {
	q := s.DB.WithContext(ctx).Model(&models.Report{}).Preload("Images")

	scope := policy.ListScope(caller)
	if !scope.All {
		q = q.Where("user_id = ?", scope.OwnerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	reports := []models.Report{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *ReportService) Get(ctx context.Context, caller auth.Identity, reportID uint) (*models.Report, error) {
	report, err := s.find(ctx, s.DB, reportID)
	if err != nil {
		return nil, err
	}
	if _, err := policy.Authorize(caller, reportTarget(report)); err != nil {
		return nil, err
	}
	return report, nil
}

// Create stores a new pending report owned by the caller. Owner and status
// never come from the request body.
func (s *ReportService) Create(ctx context.Context, caller auth.Identity, req types.CreateReportRequest) (*models.Report, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	reportType := strings.TrimSpace(req.Type)
	if title == "" || description == "" || reportType == "" {
		return nil, validationf("title, description and type are required")
	}

	var owners int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", caller.UserID).Count(&owners).Error; err != nil {
		return nil, err
	}
	if owners == 0 {
		return nil, ErrAccountGone
	}

	now := s.Now()
	report := models.Report{
		Title:       title,
		Description: description,
		Type:        reportType,
		Status:      models.StatusPending,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		UserID:      caller.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Images:      []models.ReportImage{},
	}
	if err := s.DB.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, err
	}

	return &report, nil
}

// Update applies the fields the caller may change and always bumps
// updated_at. Disallowed and unknown fields are ignored.
func (s *ReportService) Update(ctx context.Context, caller auth.Identity, reportID uint, fields map[string]interface{}) (*models.Report, error) {
	report, err := s.find(ctx, s.DB, reportID)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Authorize(caller, reportTarget(report))
	if err != nil {
		return nil, err
	}

	updates, err := reportUpdates(decision.Filter(fields))
	if err != nil {
		return nil, err
	}
	updates["updated_at"] = s.Now()

	if err := s.DB.WithContext(ctx).Model(&models.Report{ID: report.ID}).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.find(ctx, s.DB, report.ID)
}

// Delete removes a report and its image rows, then tries to remove the
// image files. File removal failures never fail the request.
func (s *ReportService) Delete(ctx context.Context, caller auth.Identity, reportID uint) error {
	report, err := s.find(ctx, s.DB, reportID)
	if err != nil {
		return err
	}
	if _, err := policy.Authorize(caller, reportTarget(report)); err != nil {
		return err
	}

	paths := make([]string, 0, len(report.Images))
	for _, img := range report.Images {
		paths = append(paths, img.FilePath)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", report.ID).Delete(&models.ReportImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Report{}, report.ID).Error
	})
	if err != nil {
		return err
	}

	removeFiles(ctx, s.Store, s.Log, paths)
	return nil
}

func (s *ReportService) find(ctx context.Context, db *gorm.DB, reportID uint) (*models.Report, error) {
	var report models.Report
	err := db.WithContext(ctx).Preload("Images").First(&report, reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func reportTarget(r *models.Report) policy.Target {
	return policy.Target{Kind: policy.KindReport, OwnerID: r.UserID}
}

// reportUpdates converts already-filtered JSON fields into column updates.
func reportUpdates(allowed map[string]interface{}) (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	for _, key := range []string{"title", "description", "type"} {
		if _, ok := allowed[key]; !ok {
			continue
		}
		v, err := requiredString(allowed, key)
		if err != nil {
			return nil, err
		}
		updates[key] = v
	}

	if _, ok := allowed["latitude"]; ok {
		v, err := optionalFloat(allowed, "latitude", -90, 90)
		if err != nil {
			return nil, err
		}
		updates["latitude"] = v
	}
	if _, ok := allowed["longitude"]; ok {
		v, err := optionalFloat(allowed, "longitude", -180, 180)
		if err != nil {
			return nil, err
		}
		updates["longitude"] = v
	}
	if _, ok := allowed["address"]; ok {
		v, err := optionalString(allowed, "address")
		if err != nil {
			return nil, err
		}
		updates["address"] = v
	}

	if _, ok := allowed["status"]; ok {
		status, isString := allowed["status"].(string)
		if !isString || !models.ValidStatus(status) {
			return nil, validationf("status must be one of: pending, investigating, resolved, rejected")
		}
		updates["status"] = status
	}

	return updates, nil
}
