package Tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Kicho/Locks"
	"Kicho/Models"
	"Kicho/Presence"
)

// The full editing lifecycle of one client: default template on creation,
// template replacement, propagation to future years, then a drift check
// against a stale cache.
func TestTemplateLifecycle(t *testing.T) {
	db := newTestDB(t)
	locks := Locks.NewRecordLock()
	coordinator := NewCoordinator(db, locks)
	propagator := NewPropagator(db, locks)
	reconciler := NewReconciler(db)

	// Client 500 starts with the AGENCY default template.
	seedClient(t, db, 500, Models.TasksByYear{"2025": {"A", "B"}}, nil)

	_, err := coordinator.Update(500, &ClientPatch{
		CustomTasksByYear: map[string][]string{"2025": {"A", "B", "C"}},
	})
	require.NoError(t, err)

	result, err := propagator.Propagate(500, "2025", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026", "2027", "2028", "2029", "2030", "2031", "2032", "2033", "2034"},
		result.PropagatedTo)
	assert.Equal(t, []string{"A", "B", "C"}, result.Tasks)

	// A cache from before the template change is out of sync for 2026.
	diff, err := reconciler.Diff(500, map[string][]string{"2026": {"A", "B"}})
	require.NoError(t, err)
	assert.False(t, diff.InSync)

	var found bool
	for _, mismatch := range diff.Mismatches {
		if mismatch.Year != "2026" {
			continue
		}
		found = true
		assert.Equal(t, []string{"C"}, mismatch.MissingFromCaller)
		assert.Empty(t, mismatch.MissingFromServer)
	}
	assert.True(t, found, "expected a mismatch entry for 2026")
}

// A foreign editing session warns but never blocks a save: presence is
// advisory, the record lock is what serializes writes.
func TestPresenceDoesNotBlockUpdate(t *testing.T) {
	db := newTestDB(t)
	coordinator := NewCoordinator(db, Locks.NewRecordLock())
	tracker := Presence.NewTracker(db)
	seedClient(t, db, 101, nil, nil)

	now := time.Now()
	decision, err := tracker.AcquireOrReport(101, "alice", now)
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = tracker.AcquireOrReport(101, "bob", now)
	require.NoError(t, err)
	require.False(t, decision.Allowed, "bob should see alice's session")

	// Bob saves anyway.
	updated, err := coordinator.Update(101, &ClientPatch{Status: strPtr("完了")})
	require.NoError(t, err)
	assert.Equal(t, "完了", updated.Status)
}
