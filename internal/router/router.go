package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/audit"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/config"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/handler"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/infra"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/middleware"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/repository"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/service"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/worker"
)

// New wires repositories, services and handlers and returns the engine.
func New(db *gorm.DB, rdb *redis.Client, cfg *config.Config, dispatcher *worker.Dispatcher, fiscalCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Repositories
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	stockRepo := repository.NewStockRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	promocionRepo := repository.NewPromocionRepository(db)

	// Services
	recorder := audit.NewRedisRecorder(rdb)
	pricingSvc := service.NewPricingService(promocionRepo, rdb)
	stockSvc := service.NewStockService(stockRepo, productoRepo, recorder)
	cajaSvc := service.NewCajaService(cajaRepo, recorder)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, pricingSvc, stockSvc, cajaSvc, recorder, dispatcher)

	// Handlers
	ventasHandler := handler.NewVentasHandler(ventaSvc)
	stockHandler := handler.NewStockHandler(stockSvc)
	cajaHandler := handler.NewCajaHandler(cajaSvc)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	r.GET("/health", handler.Health(db, rdb, fiscalCB))

	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	v1.Use(middleware.RateLimiter(rdb, cfg.RateLimitMax, time.Minute))
	{
		ventas := v1.Group("/ventas")
		{
			ventas.POST("", ventasHandler.Iniciar)
			ventas.GET("/:id", ventasHandler.GetByID)
			ventas.POST("/:id/items", ventasHandler.AgregarItemPorProducto)
			ventas.POST("/:id/items/codigo", ventasHandler.AgregarItemPorCodigo)
			ventas.PATCH("/:id/items/:itemId", ventasHandler.ActualizarItem)
			ventas.DELETE("/:id/items/:itemId", ventasHandler.QuitarItem)
			ventas.POST("/:id/confirmar", ventasHandler.Confirmar)
			ventas.POST("/:id/anular", ventasHandler.Anular)
		}

		stock := v1.Group("/stock")
		{
			stock.POST("/movimientos", stockHandler.RegistrarMovimiento)
			stock.GET("/movimientos", stockHandler.GetMovimientos)
			stock.GET("/saldos", stockHandler.GetSaldos)
		}

		v1.POST("/cajas", middleware.RequireRole("admin"), cajaHandler.CrearCaja)

		caja := v1.Group("/caja")
		{
			caja.POST("/sesiones", cajaHandler.AbrirSesion)
			caja.GET("/sesiones/:id", cajaHandler.GetResumen)
			caja.POST("/sesiones/:id/movimientos", cajaHandler.RegistrarMovimiento)
			caja.POST("/sesiones/:id/cerrar", cajaHandler.CerrarSesion)
			caja.GET("/historial", cajaHandler.Historial)
		}
	}

	return r
}
