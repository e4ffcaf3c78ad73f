package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "spendwise/internal/errors"
	"spendwise/internal/logger"
	"spendwise/internal/models"
)

const (
	minUsernameLength = 4
	minPasswordLength = 8
	maxFailedLogins   = 5
	lockoutDuration   = 15 * time.Minute
)

var digitRegex = regexp.MustCompile(`\d`)

// userService handles user-related business logic.
type userService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db, now: time.Now}
}

// CreateUser registers a new user
func (s *userService) CreateUser(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	var problems []string
	if len(username) < minUsernameLength {
		problems = append(problems, "Username must be at least 4 characters long")
	}
	if len(password) < minPasswordLength {
		problems = append(problems, "Password must be at least 8 characters long")
	} else if !digitRegex.MatchString(password) {
		problems = append(problems, "Password must contain at least one number")
	}
	if len(problems) > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, strings.Join(problems, ", "))
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateUsername
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Username: username,
		Password: string(hashedPassword),
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUserByUsername retrieves an active user by username
func (s *userService) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ? AND is_active = ?", strings.TrimSpace(username), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin checks credentials and tracks failures. After maxFailedLogins
// consecutive failures the account is locked for lockoutDuration.
func (s *userService) AttemptLogin(username, password string) (*models.User, error) {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.VerifyPassword(user, password) {
		updates := map[string]interface{}{"failed_login_attempts": user.FailedLoginAttempts + 1}
		if user.FailedLoginAttempts+1 >= maxFailedLogins {
			updates["locked_until"] = now.Add(lockoutDuration)
			logger.Get().Warnw("Account locked after repeated login failures", "user_id", user.ID)
		}
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	updates := map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	return user, nil
}
