package Presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Kicho/Models"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Models.EditingSession{}))
	return NewTracker(db)
}

func TestAcquireCreatesSession(t *testing.T) {
	tracker := newTestTracker(t)
	now := time.Now()

	decision, err := tracker.AcquireOrReport(101, "alice", now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	status, err := tracker.Status(101, now)
	require.NoError(t, err)
	assert.True(t, status.Editing)
	assert.Equal(t, "alice", status.EditorID)
}

func TestAcquireReportsForeignSession(t *testing.T) {
	tracker := newTestTracker(t)
	now := time.Now()

	_, err := tracker.AcquireOrReport(101, "alice", now)
	require.NoError(t, err)

	decision, err := tracker.AcquireOrReport(101, "bob", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "alice", decision.EditorID)
	require.NotNil(t, decision.Since)
}

func TestAcquireRefreshesOwnSession(t *testing.T) {
	tracker := newTestTracker(t)
	now := time.Now()

	_, err := tracker.AcquireOrReport(101, "alice", now)
	require.NoError(t, err)

	// 9 minutes later the same editor re-declares intent; the session is
	// refreshed, not rejected, and survives past the original deadline.
	later := now.Add(9 * time.Minute)
	decision, err := tracker.AcquireOrReport(101, "alice", later)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	status, err := tracker.Status(101, now.Add(15*time.Minute))
	require.NoError(t, err)
	assert.True(t, status.Editing)
}

func TestExpiredSessionIsPurged(t *testing.T) {
	tracker := newTestTracker(t)
	now := time.Now()

	_, err := tracker.AcquireOrReport(101, "alice", now)
	require.NoError(t, err)

	// Past the inactivity window alice's session no longer blocks bob and
	// no longer shows in the status report.
	later := now.Add(SessionTTL + time.Second)
	status, err := tracker.Status(101, later)
	require.NoError(t, err)
	assert.False(t, status.Editing)

	decision, err := tracker.AcquireOrReport(101, "bob", later)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestPurgeCountsRemovals(t *testing.T) {
	tracker := newTestTracker(t)
	now := time.Now()

	_, err := tracker.AcquireOrReport(101, "alice", now)
	require.NoError(t, err)
	_, err = tracker.AcquireOrReport(102, "bob", now)
	require.NoError(t, err)

	removed, err := tracker.PurgeExpired(now.Add(SessionTTL + time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)
}

func TestTouchRequiresExistingSession(t *testing.T) {
	tracker := newTestTracker(t)
	now := time.Now()

	err := tracker.Touch(101, "alice", now)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = tracker.AcquireOrReport(101, "alice", now)
	require.NoError(t, err)
	require.NoError(t, tracker.Touch(101, "alice", now.Add(time.Minute)))

	// Touch never revives an expired session either.
	err = tracker.Touch(101, "alice", now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReleaseIsIdempotentAndOwnerScoped(t *testing.T) {
	tracker := newTestTracker(t)
	now := time.Now()

	_, err := tracker.AcquireOrReport(101, "alice", now)
	require.NoError(t, err)

	// Someone else's release is a no-op.
	require.NoError(t, tracker.Release(101, "bob"))
	status, err := tracker.Status(101, now)
	require.NoError(t, err)
	assert.True(t, status.Editing)

	require.NoError(t, tracker.Release(101, "alice"))
	require.NoError(t, tracker.Release(101, "alice"))
	status, err = tracker.Status(101, now)
	require.NoError(t, err)
	assert.False(t, status.Editing)
}

func TestForceReleaseDropsAllSessions(t *testing.T) {
	tracker := newTestTracker(t)
	now := time.Now()

	_, err := tracker.AcquireOrReport(101, "alice", now)
	require.NoError(t, err)

	removed, err := tracker.ForceRelease(101)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	status, err := tracker.Status(101, now)
	require.NoError(t, err)
	assert.False(t, status.Editing)
}
