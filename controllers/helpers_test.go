package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/metrics"
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/Mghendi-Pato/pointofsale-sub000/tests/testutil"
	"github.com/Mghendi-Pato/pointofsale-sub000/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "correct-horse"

var seq int

func nextSeq() int {
	seq++
	return seq
}

// setupTestDB opens a fresh in-memory database and installs it (and a test
// config and metrics registry) as the process-wide instances
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db), "Failed to migrate test database")

	config.SetDB(db)
	config.SetConfig(&config.Config{
		GoEnv:       "test",
		JWTSecret:   "controller-test-secret",
		JWTIssuer:   "pointofsale",
		JWTAudience: "pointofsale-dashboard",
		TokenTTL:    time.Hour,
	})
	metrics.Set(metrics.NewMetrics(prometheus.NewRegistry()))

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// mockAuthMiddleware sets up the context the way EnsureValidToken does
func mockAuthMiddleware(userID uint, role string) gin.HandlerFunc {
	return testutil.MockAuthMiddleware(userID, role)
}

func performRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response should be valid JSON: %s", w.Body.String())
	return response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	response := decodeResponse(t, w)
	errorData, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "Response should carry an error object: %s", w.Body.String())
	return errorData["code"].(string)
}

func seedLocation(t *testing.T, db *gorm.DB, name string) models.Location {
	t.Helper()
	loc := models.Location{Name: name, Location: name}
	require.NoError(t, db.Create(&loc).Error)
	return loc
}

func seedUser(t *testing.T, db *gorm.DB, first, role string, regionID *uint) models.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	user := models.User{
		FirstName: first,
		LastName:  "Test",
		Email:     fmt.Sprintf("%s-%d@example.com", first, nextSeq()),
		Password:  hash,
		Role:      role,
		Status:    models.StatusActive,
		RegionID:  regionID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedSupplier(t *testing.T, db *gorm.DB) models.Supplier {
	t.Helper()
	supplier := models.Supplier{Name: "Wholesale Ltd", Phone: fmt.Sprintf("0700%06d", nextSeq())}
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
