package main

import (
	"time"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/controllers"
	"github.com/Mghendi-Pato/pointofsale-sub000/middleware"
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter wires every endpoint with its role gate. gatherer backs
// /metrics and may be nil when metrics are disabled.
func setupRouter(cfg *config.Config, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	if cfg.MetricsEnabled && gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	admins := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		loginLimiter := middleware.NewIPRateLimiter(cfg.LoginRatePerMinute)
		v1.POST("/user/login", middleware.LoginRateLimiter(loginLimiter), controllers.Login)
	}

	auth := v1.Group("", middleware.EnsureValidToken(cfg))

	users := auth.Group("/user")
	{
		users.GET("/me", controllers.GetMyProfile)
		users.PUT("/password", controllers.ChangePassword)
		users.POST("/new", admins, controllers.CreateUser)
		users.GET("/all", admins, controllers.ListUsers)
		users.PUT("/:id", admins, controllers.UpdateUser)
		users.PUT("/:id/status", admins, controllers.ToggleUserStatus)
		users.DELETE("/:id", admins, controllers.DeleteUser)
	}

	locations := auth.Group("/location")
	{
		locations.GET("/all", controllers.ListLocations)
		locations.POST("/new", admins, controllers.CreateLocation)
		locations.PUT("/:id", admins, controllers.UpdateLocation)
		locations.DELETE("/:id", admins, controllers.DeleteLocation)
	}

	suppliers := auth.Group("/supplier", admins)
	{
		suppliers.POST("/new", controllers.CreateSupplier)
		suppliers.GET("/all", controllers.ListSuppliers)
		suppliers.PUT("/:id", controllers.UpdateSupplier)
		suppliers.DELETE("/:id", controllers.DeleteSupplier)
	}

	phoneModels := auth.Group("/model", admins)
	{
		phoneModels.POST("/new", controllers.CreateModel)
		phoneModels.GET("/", controllers.ListModels)
		phoneModels.PUT("/", controllers.UpdateCommissions)
		phoneModels.DELETE("/:id", controllers.DeleteModel)
	}

	collectors := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleCollectionOfficer)
	phones := auth.Group("/phone")
	{
		phones.GET("/all", controllers.ListPhones)
		phones.POST("/sell", controllers.SellPhone)
		phones.POST("/new", admins, controllers.CreatePhone)
		phones.GET("/export", admins, controllers.ExportSales)
		phones.POST("/export/archive", admins, controllers.ArchiveSales)
		phones.PUT("/:id", admins, controllers.UpdatePhone)
		phones.DELETE("/:id", admins, controllers.DeletePhone)
		phones.PUT("/:id/lost", admins, controllers.TogglePhoneLost)
		phones.PUT("/:id/reconcile", collectors, controllers.ReconcilePhone)
		phones.PUT("/:id/revert", collectors, controllers.RevertPhone)
	}

	customers := auth.Group("/customer")
	{
		customers.GET("/all", admins, controllers.ListCustomers)
		customers.GET("/:idNumber", controllers.GetCustomerByIDNumber)
	}

	pools := auth.Group("/pool")
	{
		pools.GET("/all", controllers.ListPools)
		pools.POST("/new", middleware.RequireRole(models.RoleSuperAdmin), controllers.CreatePool)
		pools.PUT("/:id", middleware.RequireRole(models.RoleSuperAdmin), controllers.UpdatePool)
		pools.DELETE("/:id", middleware.RequireRole(models.RoleSuperAdmin), controllers.DeletePool)
	}

	auth.GET("/dashboard/summary", controllers.GetDashboardSummary)

	return router
}

// corsConfig allows the configured dashboard origins, or any origin without
// credentials when none are configured
func corsConfig(origins []string) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = origins
	corsCfg.AllowCredentials = true
	return corsCfg
}
