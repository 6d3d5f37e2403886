package router

import (
	"time"

	"github.com/menuvercel/mitienda-host/internal/config"
	"github.com/menuvercel/mitienda-host/internal/handler"
	"github.com/menuvercel/mitienda-host/internal/infra"
	"github.com/menuvercel/mitienda-host/internal/middleware"
	"github.com/menuvercel/mitienda-host/internal/model"
	"github.com/menuvercel/mitienda-host/internal/repository"
	"github.com/menuvercel/mitienda-host/internal/service"
	"github.com/menuvercel/mitienda-host/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure handles built by the composition root.
// Rdb and Photos may be nil: the report cache and alert queue are then
// disabled and photo uploads fail with 502.
type Deps struct {
	DB      *gorm.DB
	Rdb     *redis.Client
	Photos  service.PhotoStore
	PhotoCB *infra.CircuitBreaker
	// AlertasHabilitadas enqueues low-stock e-mails after deliveries.
	AlertasHabilitadas bool
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	db := deps.DB
	loc := cfg.Location()
	cache := service.NewReportCache(deps.Rdb, cfg.ReportCacheTTL())

	var alertas service.AlertaStockNotifier
	if deps.AlertasHabilitadas && deps.Rdb != nil {
		alertas = worker.NewDispatcher(deps.Rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	txRunner := repository.NewTxRunner(db)
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	asignacionRepo := repository.NewAsignacionRepository(db)
	transaccionRepo := repository.NewTransaccionRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg, cache)
	productoSvc := service.NewProductoService(txRunner, productoRepo, deps.Photos)
	inventarioSvc := service.NewInventarioService(txRunner, productoRepo, asignacionRepo, transaccionRepo, ventaRepo, usuarioRepo, alertas, cache)
	ventaSvc := service.NewVentaService(txRunner, productoRepo, ventaRepo, asignacionRepo, cache, loc)
	reporteSvc := service.NewReporteService(ventaRepo, usuarioRepo, cache, loc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, !cfg.IsDevelopment())
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc, inventarioSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, deps.Rdb, deps.PhotoCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/logout", authH.Logout)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	almacen := middleware.RequireRole(model.RolAlmacen)
	vendedor := middleware.RequireRole(model.RolVendedor)

	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/register", almacen, authH.Registrar)
		v1.GET("/usuarios/me", usuariosH.Me)

		v1.GET("/vendedores", almacen, usuariosH.ListarVendedores)
		v1.PUT("/vendedores/:id", almacen, usuariosH.ActualizarVendedor)
		// Almacen, or the Vendedor itself (checked in the handler)
		v1.GET("/vendedores/:id/productos", inventarioH.ListarAsignaciones)

		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/:id", productosH.ObtenerPorID)
		prods := v1.Group("/productos", almacen)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.POST("/:id/foto", productosH.SubirFoto)
			prods.DELETE("/:id", productosH.Eliminar)
		}

		v1.POST("/transacciones", almacen, inventarioH.Entregar)
		v1.POST("/transacciones/baja", almacen, inventarioH.Reducir)
		v1.GET("/transacciones", inventarioH.ListarTransacciones)
		v1.GET("/inventario/alertas", almacen, inventarioH.ObtenerAlertas)

		v1.POST("/ventas", vendedor, ventasH.RegistrarVenta)
		v1.GET("/ventas", ventasH.ListarVentas)

		reportes := v1.Group("/reportes")
		{
			reportes.GET("/ventas-diarias", reportesH.VentasDiarias)
			reportes.GET("/ventas-semanales", reportesH.VentasSemanales)
			reportes.GET("/ventas-semanales/pdf", reportesH.ReporteSemanalPDF)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
