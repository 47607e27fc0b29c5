package metrics

import "github.com/prometheus/client_golang/prometheus"

// Price resolution outcomes.
const (
	PriceSourceDirect  = "direct"
	PriceSourceHistory = "history"
	PriceSourceNone    = "none"
	PriceSourceNoPrice = "no_price"
)

// PricingMetrics counts price resolutions by the source that produced them.
type PricingMetrics struct {
	resolutions *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing counters on reg. A nil registerer
// yields a no-op recorder.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pricing",
		Name:      "resolutions_total",
		Help:      "Product price resolutions by winning source.",
	}, []string{"source"})
	reg.MustRegister(resolutions)
	return &PricingMetrics{resolutions: resolutions}
}

// ObserveResolution increments the counter for source.
func (p *PricingMetrics) ObserveResolution(source string) {
	if p == nil || p.resolutions == nil {
		return
	}
	p.resolutions.WithLabelValues(normalizeLabel(source)).Inc()
}

// ModerationMetrics counts moderation decisions.
type ModerationMetrics struct {
	decisions *prometheus.CounterVec
}

// NewModerationMetrics registers the moderation counters on reg.
func NewModerationMetrics(reg prometheus.Registerer) *ModerationMetrics {
	if reg == nil {
		return &ModerationMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "moderation",
		Name:      "decisions_total",
		Help:      "Moderation decisions by entity and resulting status.",
	}, []string{"entity", "status"})
	reg.MustRegister(decisions)
	return &ModerationMetrics{decisions: decisions}
}

// ObserveDecision increments the counter for entity and status.
func (m *ModerationMetrics) ObserveDecision(entity, status string) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.WithLabelValues(normalizeLabel(entity), normalizeLabel(status)).Inc()
}
