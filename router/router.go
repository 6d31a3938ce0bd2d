package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/controllers"
	"github.com/yeremiapane/restaurant-backoffice/corte"
	"github.com/yeremiapane/restaurant-backoffice/kds"
	"github.com/yeremiapane/restaurant-backoffice/middlewares"
	"github.com/yeremiapane/restaurant-backoffice/services"
	"github.com/yeremiapane/restaurant-backoffice/session"
)

// Deps are the long-lived services the routes are served from.
type Deps struct {
	Registry  *session.Registry
	History   corte.HistoryBackend
	Catalog   *services.CatalogService
	Discounts *services.DiscountService
	Monitor   *services.BoardMonitor
	Hub       *kds.Hub
	Corte     *corte.Service
	Audit     *services.AuditService

	CORSOrigin string
	LoginRate  int
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))

	// Inisialisasi controller
	authCtrl := controllers.NewAuthController(d.Registry)
	catalogCtrl := controllers.NewCatalogController(d.Catalog, d.Registry)
	discountCtrl := controllers.NewDiscountController(d.Discounts, d.Registry)
	orderCtrl := controllers.NewOrderController(d.History, d.Monitor.Board, d.Hub, d.Audit, d.Registry)
	liveCtrl := controllers.NewLiveController(d.Monitor, d.Registry)
	kdsCtrl := controllers.NewKDSController(liveCtrl, d.Hub, d.CORSOrigin)
	corteCtrl := controllers.NewCorteController(d.Corte, d.Audit, d.Registry)
	adminCtrl := controllers.NewAdminController(d.Audit, d.Hub, d.Registry)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login
	loginLimiter := middlewares.NewLoginRateLimiter(d.LoginRate)
	public := r.Group("/api/auth")
	{
		public.POST("/login", loginLimiter.RateLimit(), authCtrl.Login)
		public.POST("/logout", authCtrl.Logout)
		public.GET("/verify", authCtrl.Verify)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware(d.Registry))

	// CATALOG
	for _, name := range d.Catalog.Names() {
		res := auth.Group("/"+name, catalogCtrl.Bind(name))
		res.GET("", catalogCtrl.List)
		res.POST("", catalogCtrl.Create)
		res.POST("/reorder", catalogCtrl.Reorder)
		res.GET("/:id", catalogCtrl.Get)
		res.PUT("/:id", catalogCtrl.Update)
		res.DELETE("/:id", catalogCtrl.Delete)
	}
	auth.GET("/productos/subcategoria/:id", catalogCtrl.ProductsBySubcategory)

	// DISCOUNTS
	auth.GET("/descuentos", discountCtrl.List)
	auth.PUT("/descuentos/:id/activar", discountCtrl.SetActive)
	auth.POST("/descuentos/reorder", discountCtrl.Reorder)

	// ORDERS
	auth.GET("/ordenes/historial", orderCtrl.History)
	auth.GET("/ordenes/:id", orderCtrl.Detail)
	auth.POST("/ordenes/:id/:action", orderCtrl.Action)

	// HISTORY LIST
	auth.GET("/historial", orderCtrl.Browse)
	auth.POST("/historial/siguiente", orderCtrl.BrowseNext)
	auth.PUT("/historial/filtros", orderCtrl.BrowseFilter)
	auth.DELETE("/historial/filtros", orderCtrl.BrowseClear)
	auth.POST("/historial/orden/:campo", orderCtrl.BrowseSort)

	// LIVE BOARD
	auth.GET("/live/board", liveCtrl.Board)
	auth.GET("/live/stream", liveCtrl.Stream)

	// CORTE
	auth.GET("/cortes", corteCtrl.Report)
	auth.POST("/cortes/arqueo", corteCtrl.RecordCount)
	auth.GET("/cortes/arqueos", corteCtrl.Counts)

	// ADMIN
	auth.GET("/auditoria", adminCtrl.AuditLog)
	auth.GET("/sesiones", adminCtrl.Sessions)

	// WebSocket endpoint untuk layar dapur
	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware(d.Registry))
	{
		ws.GET("/board", kdsCtrl.KDSHandler)
	}

	return r
}
