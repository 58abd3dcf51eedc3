package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/waveline/waveline/models"
	"github.com/waveline/waveline/utils"
)

// AccountService owns user identity: registration, credential verification
// and profile mutation. Callers always pass the acting user ID explicitly;
// there is no ambient current-user state.
type AccountService struct {
	db *gorm.DB
}

// NewAccountService creates an AccountService.
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// Register creates a new account with a bcrypt password hash and the default
// avatar. Username and email matches are case-sensitive, exactly as stored.
func (s *AccountService) Register(username, email, name, password string) (*models.User, error) {
	var existing models.User
	if err := s.db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		AvatarFile:   models.DefaultAvatar,
	}
	if err := s.db.Create(&user).Error; err != nil {
		// The unique indexes decide when two registrations race past the
		// pre-checks above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var taken models.User
			if lookErr := s.db.Where("username = ?", username).First(&taken).Error; lookErr == nil {
				return nil, ErrDuplicateUsername
			}
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies a username/password pair. The failure is deliberately
// uniform: an unknown username and a wrong password are indistinguishable to
// the caller, so accounts cannot be enumerated through the login form.
func (s *AccountService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UpdateProfile overwrites the mutable profile fields. When newAvatar is
// non-empty the previous file reference is queued for sweeper deletion, but
// only after the row update succeeds, so there is never a window in which the
// user points at a missing avatar.
func (s *AccountService) UpdateProfile(userID uint, name, bio, newAvatar string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	oldAvatar := user.AvatarFile
	user.Name = name
	user.Bio = bio
	if newAvatar != "" {
		user.AvatarFile = newAvatar
	}
	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}

	if newAvatar != "" && oldAvatar != "" && oldAvatar != models.DefaultAvatar && oldAvatar != newAvatar {
		// Best-effort: if this insert fails the old file merely lingers on disk.
		_ = s.db.Create(&models.StaleFile{FileName: oldAvatar}).Error
	}
	return &user, nil
}

// GetByUsername looks a user up by handle.
func (s *AccountService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID looks a user up by primary key.
func (s *AccountService) GetByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
