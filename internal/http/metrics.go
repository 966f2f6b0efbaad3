package http

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	// Métricas de negocio del gateway
	gatewayOperationsTotal *prometheus.CounterVec
	gatewayRecordsTotal    *prometheus.CounterVec
	gatewayBatchesTotal    prometheus.Counter
)

// MetricsConfig agrupa dependencias necesarias para exponer /metrics y capturar datos.
type MetricsConfig struct {
	Registry prometheus.Registerer

	// Pool opcional: si el driver es postgres, expone gauges del pgxpool.
	Pool func() *pgxpool.Pool
}

// RegisterMetrics inicializa las métricas HTTP y de negocio y, opcionalmente,
// registra un collector para el pool de postgres. Devuelve el handler para /metrics.
func RegisterMetrics(cfg MetricsConfig) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		gatewayOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_operations_total",
			Help: "Operaciones del gateway por resultado",
		}, []string{"operation", "result"}) // result: success|error

		gatewayRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_records_total",
			Help: "Registros escritos o contados por operación",
		}, []string{"operation"})

		gatewayBatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_batches_total",
			Help: "Lotes insertados por el replace del catálogo",
		})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal,
			httpRequestDuration,
			httpInflight,
			gatewayOperationsTotal,
			gatewayRecordsTotal,
			gatewayBatchesTotal,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	if cfg.Pool != nil {
		collector := newDBPoolCollector(cfg.Pool)
		if err := registerCollector(registry, collector); err != nil {
			return nil, err
		}
	}

	// Usamos el gatherer global por compatibilidad, ya que las métricas se registran allí.
	return promhttp.Handler(), nil
}

// WithMetrics instrumenta requests HTTP con métricas Prometheus (contadores, latencia, inflight).
func WithMetrics(next http.Handler) http.Handler {
	if next == nil {
		return nil
	}
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, pathLabel).Dec()
			duration := time.Since(start).Seconds()
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(duration)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

// RecordOperation registra el resultado de una operación del gateway.
func RecordOperation(operation, result string) {
	if gatewayOperationsTotal != nil {
		gatewayOperationsTotal.WithLabelValues(operation, result).Inc()
	}
}

// RecordRecords acumula registros procesados por una operación.
func RecordRecords(operation string, n int) {
	if gatewayRecordsTotal != nil && n > 0 {
		gatewayRecordsTotal.WithLabelValues(operation).Add(float64(n))
	}
}

// RecordBatches acumula lotes insertados por el replace.
func RecordBatches(n int) {
	if gatewayBatchesTotal != nil && n > 0 {
		gatewayBatchesTotal.Add(float64(n))
	}
}

// statusRecorder captura el status code para las métricas.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// dbPoolCollector expone gauges para el pool de postgres.
type dbPoolCollector struct {
	pool func() *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newDBPoolCollector(pool func() *pgxpool.Pool) *dbPoolCollector {
	return &dbPoolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas del pool", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas del pool", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales del pool", nil, nil),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}
	pool := c.pool()
	if pool == nil {
		return
	}
	stat := pool.Stat()
	if stat == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// normalizePath colapsa segmentos dinámicos para acotar la cardinalidad
// de los labels.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" {
		return "/"
	}
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}

	segments := strings.Split(clean, "/")
	var out []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) {
		return true
	}
	if hexSegmentRE.MatchString(seg) {
		return true
	}
	if tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
