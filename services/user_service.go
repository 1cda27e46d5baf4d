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

const minPasswordLength = 6

// UserService is the credential store: registration, login and profile
// management.
type UserService struct {
	DB     *gorm.DB
	Store  storage.Store
	Tokens *auth.TokenService
	Log    *zap.Logger
	Now    func() time.Time
}

func NewUserService(db *gorm.DB, store storage.Store, tokens *auth.TokenService, log *zap.Logger) *UserService {
	return &UserService{
		DB:     db,
		Store:  store,
		Tokens: tokens,
		Log:    log,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a regular user. Registration never grants the admin role.
func (s *UserService) Register(ctx context.Context, req types.RegisterRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" {
		return nil, validationf("name must not be empty")
	}
	if !validEmail(email) {
		return nil, validationf("email is not valid")
	}
	if len(req.Password) < minPasswordLength {
		return nil, validationf("password must be at least 6 characters")
	}

	taken, err := s.emailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &user, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := auth.CheckPassword(password, user.PasswordHash); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}

// Get returns a user the caller is allowed to see: themselves, or anyone for admins.
func (s *UserService) Get(ctx context.Context, caller auth.Identity, userID uint) (*models.User, error) {
	user, err := s.find(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	if _, err := policy.Authorize(caller, policy.Target{Kind: policy.KindUser, OwnerID: user.ID}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, caller auth.Identity) ([]models.User, error) {
	if err := policy.RequireAdmin(caller); err != nil {
		return nil, ErrAdminRequired
	}

	users := []models.User{}
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies the fields the policy lets the caller change. Everything
// else in the payload is ignored.
func (s *UserService) Update(ctx context.Context, caller auth.Identity, userID uint, fields map[string]interface{}) (*models.User, error) {
	user, err := s.find(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Authorize(caller, policy.Target{Kind: policy.KindUser, OwnerID: user.ID})
	if err != nil {
		return nil, err
	}
	allowed := decision.Filter(fields)

	updates := map[string]interface{}{}
	if _, ok := allowed["name"]; ok {
		name, err := requiredString(allowed, "name")
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if _, ok := allowed["email"]; ok {
		email, err := requiredString(allowed, "email")
		if err != nil {
			return nil, err
		}
		email = normalizeEmail(email)
		if !validEmail(email) {
			return nil, validationf("email is not valid")
		}
		taken, err := s.emailTaken(ctx, email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
		updates["email"] = email
	}
	if _, ok := allowed["password"]; ok {
		password, ok := allowed["password"].(string)
		if !ok || len(password) < minPasswordLength {
			return nil, validationf("password must be at least 6 characters")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if _, ok := allowed["role"]; ok {
		role, ok := allowed["role"].(string)
		if !ok || !models.ValidRole(role) {
			return nil, validationf("role must be one of: user, admin")
		}
		updates["role"] = role
	}

	if len(updates) > 0 {
		updates["updated_at"] = s.Now()
		if err := s.DB.WithContext(ctx).Model(&models.User{ID: user.ID}).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
	}

	return s.find(ctx, s.DB, user.ID)
}

// Delete removes a user together with their reports and report images.
// Admin only. Stored image files are removed best-effort after commit.
func (s *UserService) Delete(ctx context.Context, caller auth.Identity, userID uint) error {
	if err := policy.RequireAdmin(caller); err != nil {
		return ErrAdminRequired
	}

	var paths []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.find(ctx, tx, userID)
		if err != nil {
			return err
		}

		reportIDs := func() *gorm.DB {
			return tx.Model(&models.Report{}).Select("id").Where("user_id = ?", user.ID)
		}
		if err := tx.Model(&models.ReportImage{}).
			Where("report_id IN (?)", reportIDs()).
			Pluck("file_path", &paths).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id IN (?)", reportIDs()).Delete(&models.ReportImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return err
	}

	removeFiles(ctx, s.Store, s.Log, paths)
	return nil
}

// EnsureAdmin creates an admin account, or promotes and resets the password
// of an existing account with the same email.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, validationf("email is not valid")
	}
	if len(password) < minPasswordLength {
		return nil, validationf("password must be at least 6 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if strings.TrimSpace(name) == "" {
			return nil, validationf("name must not be empty")
		}
		now := s.Now()
		user = models.User{
			Name:         strings.TrimSpace(name),
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	case err != nil:
		return nil, err
	}

	err = s.DB.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"role":          models.RoleAdmin,
		"password_hash": hash,
		"updated_at":    s.Now(),
	}).Error
	if err != nil {
		return nil, err
	}
	return s.find(ctx, s.DB, user.ID)
}

func (s *UserService) find(ctx context.Context, db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) emailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	q := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
