package models

import (
	"time"

	"gorm.io/gorm"
)

// Location is a sales region managers are assigned to
type Location struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Location  string         `gorm:"uniqueIndex;not null" json:"location"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Location model
func (Location) TableName() string {
	return "locations"
}
