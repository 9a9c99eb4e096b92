package resilience_test

import (
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/togstats/togstats/internal/provider/resilience"
)

func TestRegistryRegisterAndHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	client := resilience.NewClient(resilience.ClientConfig{Name: "entur_journeyplanner"})
	registry.Register("entur_journeyplanner", client)

	health := registry.Health("entur_journeyplanner")
	require.NotNil(t, health)
	assert.Equal(t, "entur_journeyplanner", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.Healthy())
	assert.False(t, health.Degraded())
}

func TestRegistryRecordSuccess(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("entur_gtfsrt", resilience.NewClient(resilience.ClientConfig{Name: "entur_gtfsrt"}))

	health := registry.Health("entur_gtfsrt")
	require.NotNil(t, health)
	assert.Nil(t, health.LastSuccessAt)

	registry.RecordSuccess("entur_gtfsrt")

	health = registry.Health("entur_gtfsrt")
	require.NotNil(t, health)
	require.NotNil(t, health.LastSuccessAt)
	assert.WithinDuration(t, time.Now(), *health.LastSuccessAt, time.Second)
}

func TestRegistryRecordFailure(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("entur_gtfsrt", resilience.NewClient(resilience.ClientConfig{Name: "entur_gtfsrt"}))

	registry.RecordFailure("entur_gtfsrt", assert.AnError)

	health := registry.Health("entur_gtfsrt")
	require.NotNil(t, health)
	require.NotNil(t, health.LastFailureAt)
	assert.Equal(t, assert.AnError.Error(), health.LastError)
}

func TestRegistryAllHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	for _, name := range []string{"entur_journeyplanner", "entur_gtfsrt"} {
		registry.Register(name, resilience.NewClient(resilience.ClientConfig{Name: name}))
	}

	healthList := registry.AllHealth()
	require.Len(t, healthList, 2)

	names := make(map[string]bool)
	for _, h := range healthList {
		names[h.Name] = true
		assert.Equal(t, gobreaker.StateClosed, h.CircuitState)
	}
	assert.True(t, names["entur_journeyplanner"])
	assert.True(t, names["entur_gtfsrt"])
}

func TestRegistryUnknownUpstream(t *testing.T) {
	registry := resilience.NewRegistry()

	assert.Nil(t, registry.Health("nonexistent"))
	registry.RecordSuccess("nonexistent")
	registry.RecordFailure("nonexistent", assert.AnError)
}

func TestUpstreamHealthStates(t *testing.T) {
	tests := []struct {
		state    gobreaker.State
		healthy  bool
		degraded bool
	}{
		{gobreaker.StateClosed, true, false},
		{gobreaker.StateHalfOpen, false, true},
		{gobreaker.StateOpen, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := &resilience.UpstreamHealth{CircuitState: tt.state}
			assert.Equal(t, tt.healthy, h.Healthy())
			assert.Equal(t, tt.degraded, h.Degraded())
		})
	}
}
