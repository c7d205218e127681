package metrics

import (
	"net/http"
	"strconv"
	"time"

	"rentapply/internal/workflow"
	"rentapply/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records workflow outcomes and HTTP traffic on its own registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	applicationsCreated *prometheus.CounterVec
	documentsUploaded   *prometheus.CounterVec
	contractsSigned     *prometheus.CounterVec
	payments            *prometheus.CounterVec
	stepTransitions     *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
}

var _ workflow.Recorder = (*Metrics)(nil)

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		applicationsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentapply_applications_created_total",
				Help: "Applications created, by validation tier",
			},
			[]string{"tier"},
		),
		documentsUploaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentapply_documents_uploaded_total",
				Help: "Document uploads by category and result",
			},
			[]string{"category", "result"},
		),
		contractsSigned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentapply_contracts_signed_total",
				Help: "Tenant signing attempts by result",
			},
			[]string{"result"},
		),
		payments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentapply_payments_total",
				Help: "Payment attempts by result",
			},
			[]string{"result"},
		),
		stepTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentapply_step_transitions_total",
				Help: "Workflow step changes",
			},
			[]string{"from", "to"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rentapply_http_request_duration_seconds",
				Help:    "HTTP request duration by route pattern and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *Metrics) ApplicationCreated(tier string) {
	if m == nil {
		return
	}
	m.applicationsCreated.WithLabelValues(tier).Inc()
}

func (m *Metrics) DocumentUploaded(category types.DocumentCategory, ok bool) {
	if m == nil {
		return
	}
	m.documentsUploaded.WithLabelValues(string(category), result(ok)).Inc()
}

func (m *Metrics) ContractSigned(ok bool) {
	if m == nil {
		return
	}
	m.contractsSigned.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) PaymentFinished(outcome string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StepChanged(from, to workflow.Step) {
	if m == nil {
		return
	}
	m.stepTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
