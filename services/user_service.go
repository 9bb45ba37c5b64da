package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/Mghendi-Pato/pointofsale-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserInput carries the fields of a new account
type UserInput struct {
	FirstName  string              `json:"firstName" binding:"required"`
	LastName   string              `json:"lastName" binding:"required"`
	Email      string              `json:"email" binding:"required,email"`
	Password   string              `json:"password" binding:"required"`
	Role       string              `json:"role" binding:"required,userrole"`
	RegionID   *uint               `json:"regionId"`
	Commission decimal.NullDecimal `json:"commission"`
}

// UserUpdate carries the editable fields of an account; nil fields are kept
type UserUpdate struct {
	FirstName  *string              `json:"firstName"`
	LastName   *string              `json:"lastName"`
	Email      *string              `json:"email" binding:"omitempty,email"`
	Role       *string              `json:"role" binding:"omitempty,userrole"`
	RegionID   *uint                `json:"regionId"`
	Commission *decimal.NullDecimal `json:"commission"`
}

// UserFilter narrows a user listing
type UserFilter struct {
	Role   string `form:"role" binding:"omitempty,userrole"`
	Status string `form:"status"`
}

// UserService manages staff accounts and sign-in
type UserService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserService creates a user service bound to db
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, now: time.Now}
}

// Authenticate checks credentials and records the login time
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorizedError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, err
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, unauthorizedError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !user.IsActive() {
		return nil, forbiddenError("ACCOUNT_SUSPENDED", "This account has been suspended")
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return &user, nil
}

// Create opens a new account. Only a super admin may create admins.
func (s *UserService) Create(ctx context.Context, actor *models.User, in UserInput) (*models.User, error) {
	if !models.IsValidRole(in.Role) {
		return nil, validationError("INVALID_ROLE", "Unknown role")
	}
	if err := checkRoleGrant(actor, in.Role); err != nil {
		return nil, err
	}
	if len(in.Password) < utils.MinPasswordLength {
		return nil, validationError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	if in.Commission.Valid && in.Commission.Decimal.IsNegative() {
		return nil, validationError("VALIDATION_ERROR", "Commission cannot be negative")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      normalizeEmail(in.Email),
		Password:   hash,
		Role:       in.Role,
		Status:     models.StatusActive,
		RegionID:   in.RegionID,
		Commission: in.Commission,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRegion(tx, in.RegionID); err != nil {
			return err
		}
		if err := tx.Omit("Region").Create(&user).Error; err != nil {
			return translateWriteError(err, "USER_EXISTS", "A user with this email already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, user.ID)
}

// Get loads an account with its region
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Region").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	return &user, nil
}

// List returns the accounts matching filter, ordered by name
func (s *UserService) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := s.db.WithContext(ctx).Preload("Region")
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var users []models.User
	if err := query.Order("first_name ASC, last_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update edits an account. Taking the manager role away evicts the user
// from every pool.
func (s *UserService) Update(ctx context.Context, actor *models.User, id uint, in UserUpdate) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, id)
		if err != nil {
			return err
		}
		if err := checkRoleGrant(actor, user.Role); err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if in.FirstName != nil {
			updates["first_name"] = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			updates["last_name"] = strings.TrimSpace(*in.LastName)
		}
		if in.Email != nil {
			updates["email"] = normalizeEmail(*in.Email)
		}
		if in.RegionID != nil {
			if err := checkRegion(tx, in.RegionID); err != nil {
				return err
			}
			updates["region_id"] = *in.RegionID
		}
		if in.Commission != nil {
			if in.Commission.Valid && in.Commission.Decimal.IsNegative() {
				return validationError("VALIDATION_ERROR", "Commission cannot be negative")
			}
			updates["commission"] = *in.Commission
		}
		if in.Role != nil && *in.Role != user.Role {
			if !models.IsValidRole(*in.Role) {
				return validationError("INVALID_ROLE", "Unknown role")
			}
			if err := checkRoleGrant(actor, *in.Role); err != nil {
				return err
			}
			if user.IsManager() {
				if err := EvictManager(tx, user.ID); err != nil {
					return err
				}
			}
			updates["role"] = *in.Role
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return translateWriteError(err, "USER_EXISTS", "A user with this email already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// ChangePassword replaces the password of user id after checking the current one
func (s *UserService) ChangePassword(ctx context.Context, id uint, current, next string) error {
	if len(next) < utils.MinPasswordLength {
		return validationError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, id)
		if err != nil {
			return err
		}
		if !utils.CheckPassword(user.Password, current) {
			return validationError("INVALID_PASSWORD", "Current password is incorrect")
		}
		hash, err := utils.HashPassword(next)
		if err != nil {
			return err
		}
		return tx.Model(user).Update("password", hash).Error
	})
}

// ToggleStatus flips an account between active and suspended
func (s *UserService) ToggleStatus(ctx context.Context, actor *models.User, id uint) (*models.User, error) {
	if actor.ID == id {
		return nil, validationError("SELF_SUSPEND", "You cannot change the status of your own account")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, id)
		if err != nil {
			return err
		}
		if err := checkRoleGrant(actor, user.Role); err != nil {
			return err
		}

		next := models.StatusSuspended
		if user.Status == models.StatusSuspended {
			next = models.StatusActive
		}
		return tx.Model(user).Update("status", next).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete soft-deletes an account and evicts it from every pool
func (s *UserService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if actor.ID == id {
		return validationError("SELF_DELETE", "You cannot delete your own account")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, id)
		if err != nil {
			return err
		}
		if err := checkRoleGrant(actor, user.Role); err != nil {
			return err
		}
		if err := EvictManager(tx, user.ID); err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}

// checkRoleGrant refuses to let anyone but a super admin manage admin accounts
func checkRoleGrant(actor *models.User, role string) error {
	if (role == models.RoleAdmin || role == models.RoleSuperAdmin) && actor.Role != models.RoleSuperAdmin {
		return forbiddenError("FORBIDDEN", "Only a super admin can manage admin accounts")
	}
	return nil
}

func checkRegion(tx *gorm.DB, regionID *uint) error {
	if regionID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Location{}).Where("id = ?", *regionID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return validationError("REGION_NOT_FOUND", "Region does not exist")
	}
	return nil
}

func findUser(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
