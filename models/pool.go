package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pool groups managers under one super-manager with a shared commission.
// Membership lives only in pool_members.
type Pool struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"uniqueIndex;not null" json:"name"`
	SuperManagerID *uint           `gorm:"index" json:"superManagerId"`
	SuperManager   *User           `gorm:"foreignKey:SuperManagerID" json:"superManager,omitempty"`
	PoolCommission decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"poolCommission"`
	Members        []PoolMember    `gorm:"foreignKey:PoolID" json:"members"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the Pool model
func (Pool) TableName() string {
	return "pools"
}

// PoolMember is one regular member of a pool. A manager can appear at most once.
type PoolMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PoolID    uint      `gorm:"not null;index" json:"poolId"`
	ManagerID uint      `gorm:"not null;uniqueIndex" json:"managerId"`
	Manager   User      `gorm:"foreignKey:ManagerID" json:"manager"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for the PoolMember model
func (PoolMember) TableName() string {
	return "pool_members"
}
