package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxel-mesher/internal/chunk"
	"github.com/annel0/voxel-mesher/internal/logging"
	"github.com/annel0/voxel-mesher/internal/middleware"
)

// RestServer предоставляет REST API для просмотра и управления хранилищем чанков
type RestServer struct {
	router  *gin.Engine
	store   *chunk.Store
	port    string
	metrics *ServerMetrics
	logger  *logging.Logger

	httpServer *http.Server
	listener   net.Listener
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string               // адрес для запуска сервера, например ":8088"
	Store    *chunk.Store         // хранилище чанков
	Registry *prometheus.Registry // nil — дефолтный регистр Prometheus
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("voxel_api"))
	router.Use(middleware.NewRequestLogger().Handler())

	promMw := middleware.NewPrometheusMiddleware("voxel_api", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	server := &RestServer{
		router:  router,
		store:   config.Store,
		port:    config.Port,
		metrics: NewServerMetrics(),
		logger:  logging.Component("api"),
	}

	server.setupRoutes()
	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.Use(corsMiddleware())

	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/server", rs.handleServerInfo)
		api.POST("/player", rs.handlePlayer)
		api.GET("/export", rs.handleExport)

		chunks := api.Group("/chunks")
		chunks.GET("", rs.handleListChunks)
		chunks.GET("/:x/:z", rs.handleGetChunk)
		chunks.GET("/:x/:z/mesh", rs.handleGetMesh)
		chunks.POST("/:x/:z/activate", rs.handleActivate)
		chunks.POST("/:x/:z/deactivate", rs.handleDeactivate)
		chunks.POST("/:x/:z/regenerate", rs.handleRegenerate)
	}
}

// Handler возвращает http.Handler сервера (используется в тестах)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Addr возвращает фактический адрес после Start
func (rs *RestServer) Addr() string {
	if rs.listener != nil {
		return rs.listener.Addr().String()
	}
	return rs.port
}

// Start открывает порт и обслуживает запросы в отдельной горутине
func (rs *RestServer) Start() error {
	ln, err := net.Listen("tcp", rs.port)
	if err != nil {
		return fmt.Errorf("не удалось открыть %s: %w", rs.port, err)
	}
	rs.listener = ln

	rs.httpServer = &http.Server{
		Handler:           rs.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := rs.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rs.logger.Error("❌ Ошибка REST API сервера: %v", err)
		}
	}()

	rs.logger.Info("✅ REST API сервер запущен на http://%s", ln.Addr())
	rs.logger.Info("📋 Доступные эндпоинты:")
	rs.logger.Info("   GET  /health                        - Проверка состояния")
	rs.logger.Info("   GET  /api/server                    - Информация о процессе")
	rs.logger.Info("   POST /api/player                    - Позиция игрока, обновление окна")
	rs.logger.Info("   GET  /api/chunks                    - Список чанков")
	rs.logger.Info("   GET  /api/chunks/:x/:z[/mesh]       - Чанк и его меш")
	rs.logger.Info("   POST /api/chunks/:x/:z/{activate,deactivate,regenerate}")
	rs.logger.Info("   GET  /api/export                    - glTF активных чанков")
	rs.logger.Info("   GET  /metrics                       - Метрики Prometheus")
	return nil
}

// Stop останавливает сервер, дожидаясь завершения текущих запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := rs.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("остановка HTTP сервера: %w", err)
	}
	rs.logger.Info("✅ REST API сервер остановлен")
	return nil
}
