// Package metrics exports propagation outcomes as Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/fieldsync/internal/engine"
)

const namespace = "fieldsync"

var _ engine.Observer = (*Observer)(nil)

// Observer counts rule outcomes and finished runs. Register it on a caller
// supplied registry; the package never touches the global default registry.
type Observer struct {
	outcomes *prometheus.CounterVec
	runs     *prometheus.CounterVec
	notices  prometheus.Counter
}

// New creates an Observer and registers its collectors on reg.
func New(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_outcomes_total",
			Help:      "Rule evaluations by rule family and outcome status.",
		}, []string{"kind", "status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Propagation runs by result (changed, unchanged or skip reason).",
		}, []string{"result"}),
		notices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "no_reference_notices_total",
			Help:      "Runs whose subject matched no reference record.",
		}),
	}

	for _, c := range []prometheus.Collector{o.outcomes, o.runs, o.notices} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ObserveOutcome implements engine.Observer.
func (o *Observer) ObserveOutcome(out engine.Outcome) {
	o.outcomes.WithLabelValues(string(out.Kind), string(out.Status)).Inc()
}

// ObserveResult implements engine.Observer.
func (o *Observer) ObserveResult(r *engine.Result) {
	o.runs.WithLabelValues(resultLabel(r)).Inc()
	if r.Noticed {
		o.notices.Inc()
	}
}

func resultLabel(r *engine.Result) string {
	switch {
	case r.Skipped != engine.SkipNone:
		return string(r.Skipped)
	case r.Changed:
		return "changed"
	default:
		return "unchanged"
	}
}
