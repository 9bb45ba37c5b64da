package models

import "time"

// PhoneModel is a make/model pair with its per-region commission table
type PhoneModel struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Make        string          `gorm:"not null" json:"make"`
	Model       string          `gorm:"uniqueIndex;not null" json:"model"`
	Commissions CommissionTable `gorm:"not null" json:"commissions"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the PhoneModel model
func (PhoneModel) TableName() string {
	return "phone_models"
}
