package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/controllers"
	"github.com/Mghendi-Pato/pointofsale-sub000/middleware"
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/gin-gonic/gin"
)

// newAPIRouter mounts the endpoints these suites drive behind the real
// token middleware and role gates
func newAPIRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger())

	admins := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)
	superAdmins := middleware.RequireRole(models.RoleSuperAdmin)
	collectors := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleCollectionOfficer)

	v1 := router.Group("/api/v1")
	v1.POST("/user/login", controllers.Login)

	auth := v1.Group("", middleware.EnsureValidToken(cfg))
	{
		auth.GET("/user/me", controllers.GetMyProfile)
		auth.PUT("/user/:id", admins, controllers.UpdateUser)
		auth.PUT("/user/:id/status", admins, controllers.ToggleUserStatus)

		auth.POST("/model/new", admins, controllers.CreateModel)
		auth.PUT("/model/", admins, controllers.UpdateCommissions)

		auth.POST("/phone/new", admins, controllers.CreatePhone)
		auth.GET("/phone/all", controllers.ListPhones)
		auth.POST("/phone/sell", controllers.SellPhone)
		auth.GET("/phone/export", admins, controllers.ExportSales)
		auth.POST("/phone/export/archive", admins, controllers.ArchiveSales)
		auth.PUT("/phone/:id/reconcile", collectors, controllers.ReconcilePhone)

		auth.POST("/pool/new", superAdmins, controllers.CreatePool)
		auth.GET("/pool/all", controllers.ListPools)
		auth.PUT("/pool/:id", superAdmins, controllers.UpdatePool)
		auth.DELETE("/pool/:id", superAdmins, controllers.DeletePool)

		auth.GET("/dashboard/summary", controllers.GetDashboardSummary)
	}
	return router
}

// call performs one JSON request, authenticated when token is not empty
func call(router http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

func dataOf(response map[string]interface{}) map[string]interface{} {
	data, _ := response["data"].(map[string]interface{})
	return data
}

func errorCodeOf(response map[string]interface{}) string {
	errorData, _ := response["error"].(map[string]interface{})
	code, _ := errorData["code"].(string)
	return code
}

// callWithHeader sends a GET with a raw Authorization header
func callWithHeader(router http.Handler, path, header string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
