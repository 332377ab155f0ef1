// Package metrics — Prometheus-метрики генерации, построения мешей и стриминга чанков.
//
// Метрики:
// * voxel_chunks_generated_total — counter
// * voxel_chunks_meshed_total{method} — counter
// * voxel_mesh_duration_seconds{method} — histogram
// * voxel_mesh_quads{method} — histogram
// * voxel_chunks_tracked, voxel_chunks_active — gauge
// * voxel_grid_cache_{hits,misses,errors}_total — counter
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxel-mesher/internal/mesh"
)

const namespace = "voxel"

// Collector хранит все метрики сервиса. Методы nil-коллектора ничего не делают.
type Collector struct {
	chunksGenerated prometheus.Counter
	chunksMeshed    *prometheus.CounterVec
	meshDuration    *prometheus.HistogramVec
	meshQuads       *prometheus.HistogramVec
	chunksTracked   prometheus.Gauge
	chunksActive    prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheErrors     prometheus.Counter
}

// New создаёт метрики и регистрирует их в reg; nil означает дефолтный регистр
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_generated_total",
			Help:      "Количество сгенерированных сеток чанков.",
		}),
		chunksMeshed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_meshed_total",
			Help:      "Количество построенных мешей по стратегиям.",
		}, []string{"method"}),
		meshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mesh_duration_seconds",
			Help:      "Длительность построения меша одного чанка.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"method"}),
		meshQuads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mesh_quads",
			Help:      "Количество квадов в меше одного чанка.",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 10),
		}, []string{"method"}),
		chunksTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_tracked",
			Help:      "Количество чанков в хранилище.",
		}),
		chunksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_active",
			Help:      "Количество активных чанков.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_cache_hits_total",
			Help:      "Сетки, загруженные из кэша.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_cache_misses_total",
			Help:      "Сетки, отсутствовавшие в кэше.",
		}),
		cacheErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_cache_errors_total",
			Help:      "Ошибки чтения или записи кэша сеток.",
		}),
	}

	reg.MustRegister(
		c.chunksGenerated,
		c.chunksMeshed,
		c.meshDuration,
		c.meshQuads,
		c.chunksTracked,
		c.chunksActive,
		c.cacheHits,
		c.cacheMisses,
		c.cacheErrors,
	)
	return c
}

// ObserveGenerated учитывает сгенерированную сетку
func (c *Collector) ObserveGenerated() {
	if c == nil {
		return
	}
	c.chunksGenerated.Inc()
}

// ObserveMesh учитывает построенный меш
func (c *Collector) ObserveMesh(stats mesh.Stats) {
	if c == nil {
		return
	}
	method := stats.Method.String()
	c.chunksMeshed.WithLabelValues(method).Inc()
	c.meshDuration.WithLabelValues(method).Observe(stats.Duration.Seconds())
	c.meshQuads.WithLabelValues(method).Observe(float64(stats.Quads))
}

// SetChunks обновляет количество отслеживаемых и активных чанков
func (c *Collector) SetChunks(tracked, active int) {
	if c == nil {
		return
	}
	c.chunksTracked.Set(float64(tracked))
	c.chunksActive.Set(float64(active))
}

func (c *Collector) CacheHit() {
	if c != nil {
		c.cacheHits.Inc()
	}
}

func (c *Collector) CacheMiss() {
	if c != nil {
		c.cacheMisses.Inc()
	}
}

func (c *Collector) CacheError() {
	if c != nil {
		c.cacheErrors.Inc()
	}
}
