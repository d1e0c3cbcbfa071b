package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeConflict = "conflict"
	OutcomeExpired  = "expired"
	OutcomeBurned   = "burned"
	OutcomeCooldown = "cooldown"
	OutcomeError    = "error"
)

type Metrics struct {
	Registrations      *prometheus.CounterVec
	Verifications      *prometheus.CounterVec
	Resends            *prometheus.CounterVec
	CodesSent          prometheus.Counter
	HousekeepingPurged *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireflow_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireflow_otp_verifications_total",
			Help: "OTP verification attempts by outcome",
		}, []string{"outcome"}),
		Resends: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireflow_otp_resends_total",
			Help: "OTP resend requests by outcome",
		}, []string{"outcome"}),
		CodesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "hireflow_otp_codes_sent_total",
			Help: "Verification codes handed to the sender",
		}),
		HousekeepingPurged: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireflow_housekeeping_purged_total",
			Help: "Rows removed by housekeeping by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) Registration(outcome string) { m.Registrations.WithLabelValues(outcome).Inc() }
func (m *Metrics) Verification(outcome string) { m.Verifications.WithLabelValues(outcome).Inc() }
func (m *Metrics) Resend(outcome string)       { m.Resends.WithLabelValues(outcome).Inc() }
func (m *Metrics) CodeSent()                   { m.CodesSent.Inc() }

func (m *Metrics) Purged(kind string, n int64) {
	if n > 0 {
		m.HousekeepingPurged.WithLabelValues(kind).Add(float64(n))
	}
}
