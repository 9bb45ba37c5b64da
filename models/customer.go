package models

import "time"

// Customer is a buyer, identified by their national ID number
type Customer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FirstName   string    `gorm:"not null" json:"firstName"`
	LastName    string    `gorm:"not null" json:"lastName"`
	IDNumber    string    `gorm:"column:id_number;uniqueIndex;not null" json:"idNumber"`
	PhoneNumber string    `gorm:"uniqueIndex;not null" json:"phoneNumber"`
	NkFirstName string    `json:"nkFirstName"` // next of kin
	NkLastName  string    `json:"nkLastName"`
	NkPhone     string    `json:"nkPhone"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
