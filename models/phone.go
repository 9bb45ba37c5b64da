package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Phone statuses
const (
	PhoneStatusActive    = "active"
	PhoneStatusLost      = "lost"
	PhoneStatusSold      = "sold"
	PhoneStatusReconcile = "reconcile"
)

// PhoneStatuses lists every status a phone can be in
var PhoneStatuses = []string{PhoneStatusActive, PhoneStatusLost, PhoneStatusSold, PhoneStatusReconcile}

// IsValidPhoneStatus reports whether status is one of PhoneStatuses
func IsValidPhoneStatus(status string) bool {
	for _, s := range PhoneStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Phone is a single handset in stock, identified by its IMEI
type Phone struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	IMEI            string              `gorm:"column:imei;uniqueIndex;not null" json:"imei"`
	ModelID         uint                `gorm:"not null;index" json:"modelId"`
	Model           PhoneModel          `gorm:"foreignKey:ModelID" json:"model"`
	SupplierID      uint                `gorm:"not null;index" json:"supplierId"`
	Supplier        Supplier            `gorm:"foreignKey:SupplierID" json:"supplier"`
	ManagerID       uint                `gorm:"not null;index" json:"managerId"`
	Manager         User                `gorm:"foreignKey:ManagerID" json:"manager"`
	Capacity        string              `json:"capacity"`
	PurchasePrice   decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"purchasePrice"`
	SellingPrice    decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"sellingPrice"`
	Status          string              `gorm:"not null;default:'active';index" json:"status"`
	BuyDate         time.Time           `gorm:"not null" json:"buyDate"`
	SaleDate        *time.Time          `json:"saleDate"`
	ReconcileDate   *time.Time          `json:"reconcileDate"`
	CustomerID      *uint               `gorm:"index" json:"customerId"`
	Customer        *Customer           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Company         *string             `json:"company"`                                           // reseller, set at sale time
	AgentCommission decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"agentCommission"`         // snapshot taken at sale time
	Commission      decimal.NullDecimal `gorm:"-" json:"commission"`                               // computed, current table value
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// TableName specifies the table name for the Phone model
func (Phone) TableName() string {
	return "phones"
}

// IsSold reports whether the phone has left stock through a sale
func (p Phone) IsSold() bool {
	return p.Status == PhoneStatusSold || p.Status == PhoneStatusReconcile
}
