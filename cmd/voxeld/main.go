package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxel-mesher/internal/api"
	"github.com/annel0/voxel-mesher/internal/chunk"
	"github.com/annel0/voxel-mesher/internal/config"
	"github.com/annel0/voxel-mesher/internal/logging"
	"github.com/annel0/voxel-mesher/internal/mesh"
	"github.com/annel0/voxel-mesher/internal/metrics"
	"github.com/annel0/voxel-mesher/internal/observability"
	"github.com/annel0/voxel-mesher/internal/storage"
	"github.com/annel0/voxel-mesher/internal/terrain"
	"github.com/annel0/voxel-mesher/internal/worker"
)

func main() {
	var (
		configPath = flag.String("config", "", "Путь к YAML конфигурации (иначе VOXEL_CONFIG)")
		playerX    = flag.Float64("x", 0, "Начальная позиция игрока по X")
		playerZ    = flag.Float64("z", 0, "Начальная позиция игрока по Z")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if err := logging.InitWithFileConfig(cfg.Logging.Level, cfg.Logging.FileConfig(), true); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.Sync()

	logging.Info("🧊 Запуск voxeld: метод=%s, дальность=%d, размер чанка=%d",
		cfg.Streaming.ChunkMethod, cfg.Streaming.RenderDistance, cfg.Streaming.ChunkSize)

	if err := run(cfg, *playerX, *playerZ); err != nil {
		logging.Error("❌ %v", err)
		logging.Sync()
		os.Exit(1)
	}
	logging.Info("👋 Сервис успешно остановлен")
}

func run(cfg *config.Config, playerX, playerZ float64) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТРАССИРОВКА ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, observability.Options{
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.Endpoint,
			SampleRatio: cfg.Telemetry.SampleRatio,
			Insecure:    true,
		})
		if err != nil {
			return fmt.Errorf("инициализация OpenTelemetry: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logging.Warn("остановка OpenTelemetry: %v", err)
			}
		}()
	}

	// === ХРАНИЛИЩЕ ЧАНКОВ ===
	method, err := cfg.Streaming.Method()
	if err != nil {
		return err
	}
	mesher, err := mesh.New(method)
	if err != nil {
		return err
	}

	gen, err := terrain.NewGeneratorSized(cfg.Terrain, cfg.Streaming.ChunkSize)
	if err != nil {
		return fmt.Errorf("генератор ландшафта: %w", err)
	}

	opts := chunk.Options{
		RenderDistance: cfg.Streaming.RenderDistance,
		Generator:      gen,
		Mesher:         mesher,
		Pool:           worker.New(cfg.Streaming.Workers),
		Metrics:        metrics.New(nil),
	}
	logging.Info("⚙️  Пул сборки чанков: %d воркеров", opts.Pool.Size())

	if cfg.Storage.Enabled {
		namespace := fmt.Sprintf("%s-n%d", cfg.Terrain.Fingerprint(), cfg.Streaming.ChunkSize)
		grids, err := storage.NewGridStorage(cfg.Storage.Path, namespace)
		if err != nil {
			return fmt.Errorf("кэш сеток: %w", err)
		}
		defer grids.Close()

		opts.Cache = grids
		logging.Info("💾 Кэш сеток: %s (namespace=%s)", cfg.Storage.Path, namespace)
	}

	store, err := chunk.NewStore(opts)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := store.Update(ctx, playerX, playerZ)
	if err != nil {
		return fmt.Errorf("начальное окно: %w", err)
	}
	logging.Info("✅ Начальное окно %s: %d чанков за %s", res.Center, res.Built, time.Since(start).Round(time.Millisecond))

	// === HTTP ===
	var restServer *api.RestServer
	if cfg.API.Enabled {
		restServer = api.NewRestServer(api.Config{
			Port:  fmt.Sprintf(":%d", cfg.API.GetAPIPort()),
			Store: store,
		})
		if err := restServer.Start(); err != nil {
			return err
		}
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg.Metrics.GetMetricsPort())
	}

	<-ctx.Done()
	logging.Info("📡 Получен сигнал завершения, завершение работы...")

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if restServer != nil {
		if err := restServer.Stop(shutdownCtx); err != nil {
			logging.Error("❌ Ошибка остановки REST API: %v", err)
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("❌ Ошибка остановки сервера метрик: %v", err)
		}
	}
	return nil
}

func startMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("❌ Ошибка сервера метрик: %v", err)
		}
	}()
	logging.Info("📊 Метрики Prometheus: http://localhost:%d/metrics", port)
	return srv
}
