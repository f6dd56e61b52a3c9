package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fieldsync/internal/engine"
)

func TestObserver_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := New(reg)
	require.NoError(t, err)

	o.ObserveOutcome(engine.Outcome{Kind: engine.KindWholeText, Status: engine.StatusSet})
	o.ObserveOutcome(engine.Outcome{Kind: engine.KindWholeText, Status: engine.StatusSet})
	o.ObserveOutcome(engine.Outcome{Kind: engine.KindCharacter, Status: engine.StatusNoMatch})

	assert.Equal(t, 2.0, testutil.ToFloat64(o.outcomes.WithLabelValues("whole_text", "set")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.outcomes.WithLabelValues("character", "no_match")))
}

func TestObserver_CountsRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := New(reg)
	require.NoError(t, err)

	o.ObserveResult(&engine.Result{Changed: true})
	o.ObserveResult(&engine.Result{Noticed: true})
	o.ObserveResult(&engine.Result{Skipped: engine.SkipEmptySubject})

	expected := `
# HELP fieldsync_runs_total Propagation runs by result (changed, unchanged or skip reason).
# TYPE fieldsync_runs_total counter
fieldsync_runs_total{result="changed"} 1
fieldsync_runs_total{result="empty_subject"} 1
fieldsync_runs_total{result="unchanged"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fieldsync_runs_total"))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.notices))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
