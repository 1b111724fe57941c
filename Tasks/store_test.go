package Tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Kicho/Locks"
	"Kicho/Models"
)

func TestSetYearReplacesWholeList(t *testing.T) {
	db := newTestDB(t)
	store := NewTemplateStore(db, Locks.NewRecordLock())
	seedClient(t, db, 101, Models.TasksByYear{"2025": {"受付", "入力"}}, nil)

	require.NoError(t, store.SetYear(101, "2025", []string{"受付"}))

	tasks, finalized, err := store.Years(101)
	require.NoError(t, err)
	assert.Equal(t, []string{"受付"}, tasks["2025"])
	assert.Empty(t, finalized)
}

func TestSetYearAddsNewYear(t *testing.T) {
	db := newTestDB(t)
	store := NewTemplateStore(db, Locks.NewRecordLock())
	seedClient(t, db, 101, Models.TasksByYear{"2025": {"受付"}}, nil)

	require.NoError(t, store.SetYear(101, "2026", []string{"受付", "入力"}))

	tasks, _, err := store.Years(101)
	require.NoError(t, err)
	assert.Equal(t, []string{"受付"}, tasks["2025"])
	assert.Equal(t, []string{"受付", "入力"}, tasks["2026"])
}

func TestSetYearDoesNotEnforceFinalization(t *testing.T) {
	// Finalization is advisory in the store; the HTTP layer refuses
	// finalized years, callers going through the store directly may
	// overwrite them.
	db := newTestDB(t)
	store := NewTemplateStore(db, Locks.NewRecordLock())
	seedClient(t, db, 101, Models.TasksByYear{"2025": {"受付"}}, []string{"2025"})

	require.NoError(t, store.SetYear(101, "2025", []string{"入力"}))

	tasks, finalized, err := store.Years(101)
	require.NoError(t, err)
	assert.Equal(t, []string{"入力"}, tasks["2025"])
	assert.Equal(t, []string{"2025"}, finalized)
}

func TestStoreClientNotFound(t *testing.T) {
	db := newTestDB(t)
	store := NewTemplateStore(db, Locks.NewRecordLock())

	_, _, err := store.Years(999)
	assert.ErrorIs(t, err, ErrClientNotFound)

	err = store.SetYear(999, "2025", []string{"受付"})
	assert.ErrorIs(t, err, ErrClientNotFound)
}
