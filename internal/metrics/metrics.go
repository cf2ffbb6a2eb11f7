// Package metrics agrupa los collectors Prometheus del servicio.
//
// Todos los métodos aceptan receiver nil, así los servicios pueden correr sin
// métricas (tests, CLI).
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de login.
const (
	LoginSuccess = "success"
	LoginInvalid = "invalid"
	LoginMissing = "missing"
	LoginError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	loginAttempts      *prometheus.CounterVec
	passwordMigrations prometheus.Counter
	rateDecisions      *prometheus.CounterVec
	registrations      *prometheus.CounterVec
}

// New crea un registry propio con los collectors del proceso y de Go.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		httpInflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método",
		}, []string{"method"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Intentos de login por resultado",
		}, []string{"outcome"}), // success|invalid|missing|error
		passwordMigrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_password_migrations_total",
			Help: "Passwords legacy en claro migradas a hash",
		}),
		rateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Decisiones del rate limiter",
		}, []string{"decision"}), // allowed|rejected|error
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Registros de cuentas por resultado",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal, m.httpRequestDuration, m.httpInflight,
		m.loginAttempts, m.passwordMigrations, m.rateDecisions, m.registrations,
	)
	return m
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry devuelve el registry (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PasswordMigrated() {
	if m == nil {
		return
	}
	m.passwordMigrations.Inc()
}

func (m *Metrics) RateDecision(decision string) {
	if m == nil {
		return
	}
	m.rateDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) Registration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// BucketGauge publica la cantidad de buckets del rate limiter en memoria.
func (m *Metrics) BucketGauge(count func() int) {
	if m == nil || count == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "rate_limit_buckets",
		Help: "Buckets vivos en el rate limiter en memoria",
	}, func() float64 { return float64(count()) }))
}

// PoolStats publica gauges del pool de Postgres.
func (m *Metrics) PoolStats(stat func() *pgxpool.Stat) {
	if m == nil || stat == nil {
		return
	}
	m.registry.MustRegister(newPoolCollector(stat))
}

// HTTPStart marca un request en vuelo y devuelve la función que lo cierra con
// el patrón de ruta resuelto por el router (ver RouteLabel).
func (m *Metrics) HTTPStart(method string) func(route string, status int) {
	if m == nil {
		return func(string, int) {}
	}
	method = strings.ToUpper(method)
	m.httpInflight.WithLabelValues(method).Inc()
	start := time.Now()
	return func(route string, status int) {
		m.httpInflight.WithLabelValues(method).Dec()
		label := RouteLabel(route)
		m.httpRequestDuration.WithLabelValues(method, label).Observe(time.Since(start).Seconds())
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequestsTotal.WithLabelValues(method, label, strconv.Itoa(status)).Inc()
	}
}

// poolCollector expone gauges del pgxpool.
type poolCollector struct {
	stat func() *pgxpool.Stat

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newPoolCollector(stat func() *pgxpool.Stat) *poolCollector {
	return &poolCollector{
		stat:         stat,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stat()
	if s == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(s.TotalConns()))
}

// OtherRoute agrupa todo lo que no matcheó una ruta registrada (404, archivos
// estáticos, catch-all).
const OtherRoute = "/other"

// RouteLabel convierte un patrón de chi en la label "path". Solo los patrones
// registrados llegan a ser labels, así la cardinalidad queda fija.
func RouteLabel(pattern string) string {
	if pattern == "" || strings.HasSuffix(pattern, "*") {
		return OtherRoute
	}
	return pattern
}
