package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "frota/api/swagger" // swagger docs
	"frota/internal/auth"
	"frota/internal/config"
	"frota/internal/database"
	"frota/internal/geo"
	"frota/internal/handler"
	"frota/internal/logging"
	"frota/internal/middleware"
	"frota/internal/notify"
	"frota/internal/repository"
	"frota/internal/service"
	"frota/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Frota Taxi Admin API
// @version         1.0
// @description     Back office for a corporate taxi fleet: clients, units, routes, rides and reports.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs/.env")
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log.Level); err != nil {
		panic(err)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.Database.DSN())
	if err != nil {
		logging.Fatal("database connection failed", zap.Error(err))
	}
	logging.Info("connected to PostgreSQL")

	// Redis backs the login limiter and the geo cache; without it both degrade.
	var (
		limitStore middleware.RateLimitStore = middleware.NewMemoryStore()
		geoLookup  geo.Lookup                = geo.NewIBGEClient(cfg.Geo.BaseURL, cfg.Geo.Timeout)
	)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logging.Warn("redis unavailable, using in-memory rate limiting and uncached geo lookups", zap.Error(err))
		_ = rdb.Close()
	} else {
		defer rdb.Close()
		limitStore = middleware.NewRedisStore(rdb)
		geoLookup = geo.NewCachedLookup(geoLookup, geo.NewRedisCache(rdb), cfg.Geo.CacheTTL)
	}
	cancelPing()

	wsHub := websocket.NewHub(cfg.Server.AllowedOrigins)
	go wsHub.Run(ctx)

	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SMTP.Enabled {
		mailer = notify.NewSMTPMailer(notify.SMTPSettings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Timeout:  cfg.SMTP.Timeout,
		})
	} else {
		logging.Warn("SMTP disabled, ride receipts are only logged")
	}
	notifier := notify.NewRideNotifier(mailer, cfg.SMTP.OpsMailbox, cfg.SMTP.Timeout)

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	routeRepo := repository.NewRouteRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	rideRepo := repository.NewRideRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	if err := service.SeedDefaults(ctx, roleRepo, userRepo, txManager); err != nil {
		logging.Fatal("seeding defaults failed", zap.Error(err))
	}

	issuer := auth.NewIssuer([]byte(cfg.JWT.Secret), cfg.JWT.SessionTTL, cfg.JWT.RememberTTL)
	gate := middleware.NewGate(issuer, middleware.CookieSettings{
		Name:      cfg.JWT.CookieName,
		Secure:    cfg.JWT.SecureCookie,
		CrossSite: cfg.JWT.CrossSiteCookies,
	})
	limiter := middleware.NewRateLimiter(limitStore, middleware.RateLimitConfig{
		Enabled: cfg.RateLimit.Enabled,
		Limit:   cfg.RateLimit.LoginLimit,
		Window:  cfg.RateLimit.Window,
	})

	authService := service.NewAuthService(userRepo, issuer)
	roleService := service.NewRoleService(roleRepo, auditRepo, txManager)
	userService := service.NewUserService(userRepo, roleRepo, auditRepo, txManager)
	clientService := service.NewClientService(clientRepo, rideRepo, routeRepo, auditRepo, txManager)
	routeService := service.NewRouteService(routeRepo, clientRepo, rideRepo, auditRepo, txManager)
	unitService := service.NewUnitService(unitRepo, rideRepo, auditRepo, txManager)
	rideService := service.NewRideService(rideRepo, clientRepo, routeRepo, unitRepo, auditRepo, txManager, notifier, wsHub)
	reportService := service.NewReportService(rideRepo)
	geoService := service.NewGeoService(geoLookup)
	auditService := service.NewAuditService(auditRepo)

	handlers := []interface{ RegisterRoutes(*gin.RouterGroup) }{
		handler.NewAuthHandler(authService, userService, gate, limiter.Limit("login")),
		handler.NewRoleHandler(roleService, gate),
		handler.NewUserHandler(userService, gate),
		handler.NewClientHandler(clientService, gate),
		handler.NewRouteHandler(routeService, gate),
		handler.NewUnitHandler(unitService, gate),
		handler.NewRideHandler(rideService, gate),
		handler.NewReportHandler(reportService, gate),
		handler.NewGeoHandler(geoService, gate),
		handler.NewAuditHandler(auditService, gate),
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, gate, c)
	})

	for _, h := range handlers {
		h.RegisterRoutes(&router.RouterGroup)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logging.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("graceful shutdown failed", zap.Error(err))
	}
}
