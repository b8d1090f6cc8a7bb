package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the service-level Prometheus collectors.
type Metrics struct {
	LoginAttempts      *prometheus.CounterVec
	PermissionDenials  *prometheus.CounterVec
	RateLimitRejected  *prometheus.CounterVec
	CSRFVerifyFailures prometheus.Counter
}

// New registers the service collectors with the provided registerer.
// A nil registerer falls back to the default registry.
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "iam"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	loginAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Total login attempts partitioned by result.",
	}, []string{"result"})

	permissionDenials := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "authz",
		Name:      "permission_denials_total",
		Help:      "Total guard denials partitioned by constraint kind.",
	}, []string{"constraint"})

	rateLimitRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rate_limit",
		Name:      "rejected_total",
		Help:      "Requests rejected by the rate limiter partitioned by category.",
	}, []string{"category"})

	csrfFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "csrf",
		Name:      "verify_failures_total",
		Help:      "CSRF verification failures.",
	})

	for _, collector := range []prometheus.Collector{loginAttempts, permissionDenials, rateLimitRejected, csrfFailures} {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return &Metrics{
		LoginAttempts:      loginAttempts,
		PermissionDenials:  permissionDenials,
		RateLimitRejected:  rateLimitRejected,
		CSRFVerifyFailures: csrfFailures,
	}, nil
}
