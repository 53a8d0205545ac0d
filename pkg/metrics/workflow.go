package metrics

import "github.com/prometheus/client_golang/prometheus"

// WorkflowMetrics counts order lifecycle transitions and quotation submissions.
type WorkflowMetrics struct {
	transitions *prometheus.CounterVec
	quotations  *prometheus.CounterVec
}

// NewWorkflowMetrics registers the workflow counters on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order lifecycle transitions, by action and resulting status.",
	}, []string{"action", "to"})
	quotations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotations_submitted_total",
		Help: "Quotations submitted, by kind (bid or standalone).",
	}, []string{"kind"})
	reg.MustRegister(transitions, quotations)
	return &WorkflowMetrics{transitions: transitions, quotations: quotations}
}

// IncTransition counts one applied order transition.
func (w *WorkflowMetrics) IncTransition(action, to string) {
	if w == nil || w.transitions == nil {
		return
	}
	w.transitions.WithLabelValues(normalizeLabel(action), normalizeLabel(to)).Inc()
}

// IncQuotation counts one stored quotation.
func (w *WorkflowMetrics) IncQuotation(kind string) {
	if w == nil || w.quotations == nil {
		return
	}
	w.quotations.WithLabelValues(normalizeLabel(kind)).Inc()
}
