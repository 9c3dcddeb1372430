package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/pastelaria-api/cache"
	"github.com/yeremiapane/pastelaria-api/config"
	"github.com/yeremiapane/pastelaria-api/controllers"
	"github.com/yeremiapane/pastelaria-api/kds"
	"github.com/yeremiapane/pastelaria-api/middlewares"
	"github.com/yeremiapane/pastelaria-api/services"
	"github.com/yeremiapane/pastelaria-api/validation"
	"gorm.io/gorm"
)

// Response cache lifetimes per resource.
const (
	ttlProdutos       = 5 * time.Minute
	ttlProduto        = 10 * time.Minute
	ttlCatalogo       = 10 * time.Minute
	ttlSaborCategoria = 30 * time.Minute
	ttlPedidos        = time.Minute
	ttlStats          = 5 * time.Minute
	ttlDashboard      = 5 * time.Minute
)

const (
	loginInterval = 12 * time.Second
	loginBurst    = 5
)

// SetupRouter wires every route. The hub receives order and catalog events.
func SetupRouter(cfg *config.Config, db *gorm.DB, store cache.Store, hub *kds.Hub) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)

	r := gin.New()

	limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)

	r.Use(middlewares.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.PrometheusMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.BodyLimit(cfg.MaxBodyBytes))
	r.Use(limiter.RateLimit())

	secret := []byte(cfg.JWTSecret)
	requireAuth := middlewares.RequireAuth(secret)
	optionalAuth := middlewares.OptionalAuth(secret)
	validID := middlewares.ValidateParams("id")

	recorder := services.NewSyncRecorder(db, hub)
	orders := services.NewOrderService(db, cfg.DeliveryFee, recorder)
	syncSvc := services.NewSyncService(db, recorder)

	authCtrl, err := controllers.NewAuthController(secret, cfg.TokenTTL, cfg.AdminUsername, cfg.AdminPasswordHash, cfg.AdminPassword)
	if err != nil {
		return nil, err
	}
	healthCtrl := controllers.NewHealthController(cfg.AppVersion)
	produtoCtrl := controllers.NewProdutoController(db, store, recorder)
	saborCtrl := controllers.NewSaborController(db, store, recorder)
	tamanhoCtrl := controllers.NewTamanhoController(db, store, recorder)
	pedidoCtrl := controllers.NewPedidoController(orders, store)
	syncCtrl := controllers.NewSyncController(syncSvc, store)
	statsCtrl := controllers.NewStatsController(syncSvc)
	adminCtrl := controllers.NewAdminController(store)
	kdsCtrl := controllers.NewKDSController(hub)

	r.GET("/health", healthCtrl.Health)
	r.GET("/metrics", middlewares.MetricsHandler())
	r.GET("/ws/pedidos", middlewares.WebSocketAuth(secret), kdsCtrl.Connect)

	api := r.Group("/api/v1")
	{
		api.GET("/stats", cache.Middleware(store, ttlDashboard), statsCtrl.Dashboard)

		auth := api.Group("/auth")
		auth.POST("/login",
			middlewares.NewStrictRateLimiter(loginInterval, loginBurst),
			middlewares.ValidateJSON(validation.LoginSchema),
			authCtrl.Login)
		auth.GET("/me", requireAuth, authCtrl.Me)

		produtos := api.Group("/produtos")
		{
			produtos.GET("", cache.Middleware(store, ttlProdutos), produtoCtrl.GetAll)
			produtos.GET("/:id", validID, cache.Middleware(store, ttlProduto), produtoCtrl.GetByID)
			produtos.POST("", optionalAuth, middlewares.ValidateJSON(validation.ProdutoSchema), produtoCtrl.Create)
			produtos.PUT("/:id", optionalAuth, validID, middlewares.ValidateJSON(validation.Partial(validation.ProdutoSchema)), produtoCtrl.Update)
			produtos.DELETE("/:id", optionalAuth, validID, produtoCtrl.Delete)
		}

		sabores := api.Group("/sabores")
		{
			sabores.GET("", cache.Middleware(store, ttlCatalogo), saborCtrl.GetAll)
			sabores.GET("/categorias", cache.Middleware(store, ttlSaborCategoria), saborCtrl.GetCategorias)
			sabores.GET("/:id", validID, cache.Middleware(store, ttlCatalogo), saborCtrl.GetByID)
			sabores.POST("", requireAuth, middlewares.ValidateJSON(validation.SaborSchema), saborCtrl.Create)
			sabores.PUT("/:id", requireAuth, validID, middlewares.ValidateJSON(validation.Partial(validation.SaborSchema)), saborCtrl.Update)
			sabores.DELETE("/:id", requireAuth, validID, saborCtrl.Delete)
		}

		tamanhos := api.Group("/tamanhos")
		{
			tamanhos.GET("", cache.Middleware(store, ttlCatalogo), tamanhoCtrl.GetAll)
			tamanhos.GET("/:id", validID, cache.Middleware(store, ttlCatalogo), tamanhoCtrl.GetByID)
			tamanhos.POST("", requireAuth, middlewares.ValidateJSON(validation.TamanhoSchema), tamanhoCtrl.Create)
			tamanhos.POST("/reorder", requireAuth, middlewares.ValidateJSON(validation.ReorderSchema), tamanhoCtrl.Reorder)
			tamanhos.POST("/calcular-preco", middlewares.ValidateJSON(validation.CalcularPrecoSchema), tamanhoCtrl.CalcularPreco)
			tamanhos.PUT("/:id", requireAuth, validID, middlewares.ValidateJSON(validation.Partial(validation.TamanhoSchema)), tamanhoCtrl.Update)
			tamanhos.DELETE("/:id", requireAuth, validID, tamanhoCtrl.Delete)
		}

		pedidos := api.Group("/pedidos")
		{
			pedidos.GET("", cache.Middleware(store, ttlPedidos), pedidoCtrl.GetAll)
			pedidos.GET("/stats", cache.Middleware(store, ttlStats), pedidoCtrl.Stats)
			pedidos.GET("/numero/:numero", pedidoCtrl.GetByNumero)
			pedidos.GET("/:id", validID, pedidoCtrl.GetByID)
			pedidos.POST("", middlewares.ValidateBody(validation.ValidatePedido), pedidoCtrl.Create)
			pedidos.PUT("/:id/status", validID, middlewares.ValidateJSON(validation.StatusSchema), pedidoCtrl.UpdateStatus)
			pedidos.DELETE("/:id", validID, pedidoCtrl.Cancel)
		}

		sync := api.Group("/sync", optionalAuth)
		{
			sync.POST("/upload", middlewares.ValidateJSON(validation.SyncUploadSchema), syncCtrl.Upload)
			sync.GET("/download", syncCtrl.Download)
			sync.GET("/status", syncCtrl.Status)
			sync.POST("/resolve-conflict", middlewares.RequireJSON(), syncCtrl.ResolveConflict)
			sync.GET("/queue", syncCtrl.Queue)
		}

		admin := api.Group("/admin", requireAuth, middlewares.RequireRole(controllers.RoleAdmin))
		{
			admin.POST("/clear-cache", adminCtrl.ClearCache)
			admin.POST("/sweep-cache", adminCtrl.SweepCache)
		}
	}

	r.NoRoute(middlewares.NotFound())
	return r, nil
}
