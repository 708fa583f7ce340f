package router

import (
	"time"

	"crmseguros/internal/config"
	"crmseguros/internal/handler"
	"crmseguros/internal/infra"
	"crmseguros/internal/middleware"
	"crmseguros/internal/model"
	"crmseguros/internal/repository"
	"crmseguros/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-level collaborators built by cmd/server.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	Files infra.FileStore
	// Reportes queues commission report jobs (worker.Dispatcher in production).
	Reportes service.ReporteEncolador
	// DLQ is optional; without it the /v1/jobs routes are not mounted.
	DLQ handler.ColaMuerta
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()...))
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	db := deps.DB

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	polizaRepo := repository.NewPolizaRepository(db)
	tareaRepo := repository.NewTareaRepository(db)
	metaRepo := repository.NewMetaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, deps.Redis, time.Duration(cfg.CatalogCacheTTLSeconds)*time.Second)
	clienteSvc := service.NewClienteService(clienteRepo)
	polizaSvc := service.NewPolizaService(polizaRepo, clienteRepo, productoSvc)
	leadSvc := service.NewLeadService(leadRepo, clienteRepo)
	tareaSvc := service.NewTareaService(tareaRepo)
	metaSvc := service.NewMetaService(metaRepo, cfg)
	dashboardSvc := service.NewDashboardService(tareaRepo, leadRepo, polizaRepo, metaSvc)
	comisionSvc := service.NewComisionService(polizaRepo, usuarioRepo, deps.Reportes)
	archivoSvc := service.NewArchivoService(deps.Files, polizaRepo, clienteRepo, leadRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	polizasH := handler.NewPolizasHandler(polizaSvc)
	leadsH := handler.NewLeadsHandler(leadSvc)
	tareasH := handler.NewTareasHandler(tareaSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	metasH := handler.NewMetasHandler(metaSvc)
	comisionesH := handler.NewComisionesHandler(comisionSvc)
	archivosH := handler.NewArchivosHandler(archivoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var breaker handler.BreakerReporter
	if br, ok := deps.Files.(handler.BreakerReporter); ok {
		breaker = br
	}
	r.GET("/health", handler.Health(db, deps.Redis, breaker))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Every authenticated role may call the endpoints below
	// unless a RequireRole narrows it; row scoping happens in the services.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	soloAdmin := middleware.RequireRole(model.RolAdmin)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/usuarios/agentes", usuariosH.Agentes)
		usuarios := v1.Group("/usuarios", soloAdmin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}

		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/:id", productosH.ObtenerPorID)
		prods := v1.Group("/productos", soloAdmin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		polizas := v1.Group("/polizas")
		{
			polizas.POST("/cotizar", polizasH.Cotizar)
			polizas.POST("", polizasH.Crear)
			polizas.GET("", polizasH.Listar)
			polizas.PUT("/:id", polizasH.Actualizar)
			polizas.GET("/:id/edicion", polizasH.ObtenerParaEdicion)
			polizas.POST("/legacy/importar", soloAdmin, polizasH.ImportarLegacy)
		}

		leads := v1.Group("/leads")
		{
			leads.GET("/pipeline", leadsH.Pipeline)
			leads.POST("", leadsH.Crear)
			leads.GET("/:id", leadsH.Obtener)
			leads.PUT("/:id", leadsH.Actualizar)
			leads.PATCH("/:id/etapa", leadsH.Mover)
			leads.POST("/importar", leadsH.Importar)
			leads.POST("/importar/csv", leadsH.ImportarCSV)
		}

		clientes := v1.Group("/clientes")
		{
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", soloAdmin, clientesH.Actualizar)
		}

		tareas := v1.Group("/tareas")
		{
			tareas.GET("", tareasH.Listar)
			tareas.POST("", tareasH.Crear)
			tareas.PUT("/:id", tareasH.Actualizar)
			tareas.PATCH("/:id/completar", tareasH.Completar)
		}

		v1.GET("/dashboard", dashboardH.Resumen)
		v1.GET("/metas", metasH.Obtener)
		v1.PUT("/metas", soloAdmin, metasH.Guardar)

		v1.GET("/comisiones", comisionesH.Reporte)
		v1.POST("/comisiones/reporte", comisionesH.SolicitarReporte)

		if deps.DLQ != nil {
			jobsH := handler.NewJobsHandler(deps.DLQ)
			jobs := v1.Group("/jobs", soloAdmin)
			{
				jobs.GET("/dlq", jobsH.Pendientes)
				jobs.POST("/dlq/:cola/reencolar", jobsH.Reencolar)
			}
		}

		archivos := v1.Group("/archivos")
		{
			archivos.GET("/:entidad_id", archivosH.Listar)
			archivos.POST("/:entidad_id", archivosH.Subir)
			archivos.GET("/:entidad_id/:nombre", archivosH.Descargar)
		}
	}

	// Swagger UI — only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
