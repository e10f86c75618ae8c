package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersCollectors(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterDaysFinalized.Add(3)
	m.CounterReconcileFailures.WithLabelValues("finalize").Inc()
	m.CounterWorkoutsLogged.WithLabelValues("cardio").Inc()
	m.GaugeCurrentLevel.Set(4)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.CounterDaysFinalized))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterReconcileFailures.WithLabelValues("finalize")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.GaugeCurrentLevel))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["fitlevel_test_days_finalized"])
	assert.True(t, names["fitlevel_test_current_level"])
}

func TestNewTestManager_Independent(t *testing.T) {
	// separate registries must not collide on registration
	a := NewTestManager()
	b := NewTestManager()
	a.CounterDaysRecomputed.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CounterDaysRecomputed))
}

func TestSetupPrometheus_WithManager(t *testing.T) {
	reg := SetupPrometheus()
	m := NewManager("fitlevel", "server", reg)
	m.CounterDaysFinalized.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["fitlevel_server_days_finalized"])
}
