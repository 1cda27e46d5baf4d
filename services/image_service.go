package services

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"time"

	"github.com/ecoreport/api-go/auth"
	"github.com/ecoreport/api-go/models"
	"github.com/ecoreport/api-go/policy"
	"github.com/ecoreport/api-go/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ImageService struct {
	DB       *gorm.DB
	Store    storage.Store
	Log      *zap.Logger
	MaxBytes int64
	Now      func() time.Time
}

func NewImageService(db *gorm.DB, store storage.Store, log *zap.Logger, maxBytes int64) *ImageService {
	return &ImageService{
		DB:       db,
		Store:    store,
		Log:      log,
		MaxBytes: maxBytes,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Upload validates a single image, stores it under a unique name and records
// it against the report. Nothing is written when validation fails, and the
// stored file is removed again if the row cannot be created. A nil file means
// the request had no image part; a header with an empty Filename means the
// part was sent without a file selected.
func (s *ImageService) Upload(ctx context.Context, caller auth.Identity, reportID uint, file *multipart.FileHeader) (*models.ReportImage, error) {
	var report models.Report
	err := s.DB.WithContext(ctx).First(&report, reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := policy.Authorize(caller, policy.Target{Kind: policy.KindReport, OwnerID: report.UserID}); err != nil {
		return nil, err
	}

	if file == nil {
		return nil, validationf("no image part")
	}
	if err := ValidateImageFilename(file.Filename); err != nil {
		return nil, err
	}
	if s.MaxBytes > 0 && file.Size > s.MaxBytes {
		return nil, ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := StoredFilename(file.Filename)
	path, err := s.Store.Save(ctx, name, src)
	if err != nil {
		return nil, err
	}

	image := models.ReportImage{
		Filename:  name,
		FilePath:  path,
		ReportID:  report.ID,
		CreatedAt: s.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&image).Error; err != nil {
		removeFiles(ctx, s.Store, s.Log, []string{path})
		return nil, err
	}

	return &image, nil
}

// MaxRequestBytes is the largest upload request body worth reading.
func (s *ImageService) MaxRequestBytes() int64 {
	if s.MaxBytes <= 0 {
		return 0
	}
	return s.MaxBytes + UploadOverhead
}

func (s *ImageService) Get(ctx context.Context, caller auth.Identity, imageID uint) (*models.ReportImage, error) {
	var image models.ReportImage
	err := s.DB.WithContext(ctx).First(&image, imageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, err
	}

	var report models.Report
	err = s.DB.WithContext(ctx).Select("id", "user_id").First(&report, image.ReportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, err
	}

	target := policy.Target{Kind: policy.KindReportImage, OwnerID: report.UserID}
	if _, err := policy.Authorize(caller, target); err != nil {
		return nil, err
	}
	return &image, nil
}

// Open returns the stored bytes of an image the caller may see. The caller
// closes the reader.
func (s *ImageService) Open(ctx context.Context, caller auth.Identity, imageID uint) (*models.ReportImage, io.ReadCloser, error) {
	image, err := s.Get(ctx, caller, imageID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.Store.Open(ctx, image.FilePath)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, nil, ErrImageFileNotPresent
	}
	if err != nil {
		return nil, nil, err
	}
	return image, rc, nil
}

// Delete removes the image row and then tries to remove the stored file.
func (s *ImageService) Delete(ctx context.Context, caller auth.Identity, imageID uint) error {
	image, err := s.Get(ctx, caller, imageID)
	if err != nil {
		return err
	}

	if err := s.DB.WithContext(ctx).Delete(&models.ReportImage{}, image.ID).Error; err != nil {
		return err
	}

	removeFiles(ctx, s.Store, s.Log, []string{image.FilePath})
	return nil
}
