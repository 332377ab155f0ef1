// Package config загружает конфигурацию сервиса из YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/annel0/voxel-mesher/internal/logging"
	"github.com/annel0/voxel-mesher/internal/mesh"
	"github.com/annel0/voxel-mesher/internal/terrain"
	"github.com/annel0/voxel-mesher/internal/voxel"
)

// ErrInvalidConfig возвращается, если конфигурация не прошла проверку
var ErrInvalidConfig = errors.New("недопустимая конфигурация")

// Config корневая структура конфигурации приложения
type Config struct {
	Streaming StreamingConfig `yaml:"streaming"`
	Terrain   terrain.Params  `yaml:"terrain"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	API       APIConfig       `yaml:"api"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StreamingConfig задаёт окно стриминга чанков вокруг игрока
type StreamingConfig struct {
	RenderDistance int    `yaml:"render_distance"`
	ChunkMethod    string `yaml:"chunk_method"`
	ChunkSize      int    `yaml:"chunk_size"`
	// Workers == 0 означает число логических CPU
	Workers int `yaml:"workers"`
}

// StorageConfig настраивает необязательный кэш сеток на диске
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Streaming: StreamingConfig{
			RenderDistance: 4,
			ChunkMethod:    mesh.MethodGreedy.String(),
			ChunkSize:      voxel.ChunkSize,
		},
		Terrain: terrain.DefaultParams(),
		Storage: StorageConfig{
			Path: "data",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		API: APIConfig{
			Enabled: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-mesher",
			Endpoint:    "localhost:4318",
			SampleRatio: 1.0,
		},
	}
}

// GetAPIPort возвращает порт REST API с поддержкой fallback значений
func (a *APIConfig) GetAPIPort() int {
	return getPortWithEnvFallback(a.Port, "VOXEL_API_PORT", 8088)
}

// GetMetricsPort возвращает порт Prometheus метрик с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(m.Port, "VOXEL_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Method возвращает выбранную стратегию построения меша
func (s StreamingConfig) Method() (mesh.Method, error) {
	return mesh.ParseMethod(s.ChunkMethod)
}

// FileConfig переводит настройки логирования в конфигурацию ротации
func (l LoggingConfig) FileConfig() logging.FileConfig {
	if l.File == "" {
		return logging.FileConfig{}
	}
	cfg := logging.DefaultFileConfig(l.File)
	if l.MaxSizeMB > 0 {
		cfg.MaxSizeMB = l.MaxSizeMB
	}
	if l.MaxBackups > 0 {
		cfg.MaxBackups = l.MaxBackups
	}
	if l.MaxAgeDays > 0 {
		cfg.MaxAgeDays = l.MaxAgeDays
	}
	return cfg
}

// Validate проверяет конфигурацию; все ошибки оборачивают ErrInvalidConfig
func (c *Config) Validate() error {
	if c.Streaming.RenderDistance < 1 {
		return fmt.Errorf("%w: streaming.render_distance должен быть >= 1, получено %d",
			ErrInvalidConfig, c.Streaming.RenderDistance)
	}
	if _, err := c.Streaming.Method(); err != nil {
		return fmt.Errorf("%w: streaming.chunk_method: %v", ErrInvalidConfig, err)
	}
	if c.Streaming.ChunkSize < 1 || c.Streaming.ChunkSize > 255 {
		return fmt.Errorf("%w: streaming.chunk_size должен быть от 1 до 255, получено %d",
			ErrInvalidConfig, c.Streaming.ChunkSize)
	}
	if c.Streaming.Workers < 0 {
		return fmt.Errorf("%w: streaming.workers не может быть отрицательным", ErrInvalidConfig)
	}
	if err := c.Terrain.Validate(); err != nil {
		return fmt.Errorf("%w: terrain: %v", ErrInvalidConfig, err)
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path обязателен при storage.enabled", ErrInvalidConfig)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: неизвестный logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: telemetry.sample_ratio вне [0, 1]", ErrInvalidConfig)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию и проверяет результат.
// Если path == "", используется ENV VOXEL_CONFIG; если и он пуст, берутся только значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save записывает конфигурацию в YAML, создавая родительский каталог
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
