package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq int

func nextSeq() int {
	seq++
	return seq
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db), "Failed to migrate test database")
	return db
}

func seedLocation(t *testing.T, db *gorm.DB, name string) models.Location {
	t.Helper()
	loc := models.Location{Name: name, Location: name}
	require.NoError(t, db.Create(&loc).Error)
	return loc
}

func seedUser(t *testing.T, db *gorm.DB, first, role string, regionID *uint) models.User {
	t.Helper()
	user := models.User{
		FirstName: first,
		LastName:  "Test",
		Email:     fmt.Sprintf("%s-%d@example.com", first, nextSeq()),
		Password:  "not-a-real-hash",
		Role:      role,
		Status:    models.StatusActive,
		RegionID:  regionID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedManager(t *testing.T, db *gorm.DB, first string) models.User {
	t.Helper()
	return seedUser(t, db, first, models.RoleManager, nil)
}

func seedSupplier(t *testing.T, db *gorm.DB, name string) models.Supplier {
	t.Helper()
	supplier := models.Supplier{Name: name, Phone: fmt.Sprintf("07%08d", nextSeq())}
	require.NoError(t, db.Create(&supplier).Error)
	return supplier
}

func seedModel(t *testing.T, db *gorm.DB, name string, table models.CommissionTable) models.PhoneModel {
	t.Helper()
	if table == nil {
		table = models.CommissionTable{}
	}
	model := models.PhoneModel{Make: "Acme", Model: name, Commissions: table}
	require.NoError(t, db.Create(&model).Error)
	return model
}

func seedPhone(t *testing.T, db *gorm.DB, imei string, modelID, supplierID, managerID uint) models.Phone {
	t.Helper()
	phone := models.Phone{
		IMEI:          imei,
		ModelID:       modelID,
		SupplierID:    supplierID,
		ManagerID:     managerID,
		Capacity:      "128GB",
		PurchasePrice: decimal.NewFromInt(10000),
		SellingPrice:  decimal.NewFromInt(15000),
		Status:        models.PhoneStatusActive,
		BuyDate:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Omit("Model", "Supplier", "Manager", "Customer").Create(&phone).Error)
	return phone
}

func uintPtr(v uint) *uint { return &v }

func stringPtr(v string) *string { return &v }

func requireServiceError(t *testing.T, err error, kind ErrorKind, code string) {
	t.Helper()
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok, "expected a ServiceError, got %v", err)
	require.Equal(t, kind, se.Kind)
	require.Equal(t, code, se.Code)
}
