package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User roles
const (
	RoleSuperAdmin        = "super admin"
	RoleAdmin             = "admin"
	RoleManager           = "manager"
	RoleShopKeeper        = "shop keeper"
	RoleCollectionOfficer = "collection officer"
)

// Account statuses
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Roles lists every role a user can hold
var Roles = []string{RoleSuperAdmin, RoleAdmin, RoleManager, RoleShopKeeper, RoleCollectionOfficer}

// IsValidRole reports whether role is one of Roles
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents a staff account. Managers may belong to one region.
type User struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	FirstName  string              `gorm:"not null" json:"firstName"`
	LastName   string              `gorm:"not null" json:"lastName"`
	Email      string              `gorm:"uniqueIndex;not null" json:"email"`
	Password   string              `gorm:"not null" json:"-"` // bcrypt hash
	Role       string              `gorm:"not null;default:'manager'" json:"role"`
	Status     string              `gorm:"not null;default:'active'" json:"status"`
	RegionID   *uint               `gorm:"index" json:"regionId"`
	Region     *Location           `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	Commission decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"commission"` // flat per-sale rate
	LastLogin  *time.Time          `json:"lastLogin"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt      `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsManager reports whether the user holds the manager role
func (u User) IsManager() bool {
	return u.Role == RoleManager
}

// IsActive reports whether the account may sign in
func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// HasRole reports whether the user holds any of roles
func (u User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
