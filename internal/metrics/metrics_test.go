package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountersAppearInExposition(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.IncStage()
	r.IncDrain()
	r.AddDrainedItems(3)
	r.AddDuplicates(2)
	r.IncLazyExpiry()
	r.AddSweepRemoved(4)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	require.Contains(t, body, "tenderstage_stages_total 1")
	require.Contains(t, body, "tenderstage_drains_total 1")
	require.Contains(t, body, "tenderstage_drained_items_total 3")
	require.Contains(t, body, "tenderstage_duplicates_total 2")
	require.Contains(t, body, "tenderstage_lazy_expiries_total 1")
	require.Contains(t, body, "tenderstage_sweep_removed_total 4")
}

func TestNilRegistryRecordsNothing(t *testing.T) {
	t.Parallel()

	var r *Registry
	r.IncStage()
	r.IncDrain()
	r.AddDrainedItems(1)
	r.AddDuplicates(1)
	r.IncLazyExpiry()
	r.AddSweepRemoved(1)
}
