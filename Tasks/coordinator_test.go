package Tasks

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Kicho/Locks"
	"Kicho/Models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestUpdateAppliesPresentFieldsOnly(t *testing.T) {
	db := newTestDB(t)
	coordinator := NewCoordinator(db, Locks.NewRecordLock())
	seedClient(t, db, 101, Models.TasksByYear{"2025": {"A"}}, nil)

	updated, err := coordinator.Update(101, &ClientPatch{
		Name:   strPtr("新しい名前"),
		Status: strPtr("依頼中"),
	})
	require.NoError(t, err)

	assert.Equal(t, "新しい名前", updated.Name)
	assert.Equal(t, "依頼中", updated.Status)
	// Omitted fields keep their values.
	assert.Equal(t, 3, updated.FiscalMonth)
	assert.Equal(t, Models.MethodAgency, updated.AccountingMethod)
	assert.Equal(t, []string{"A"}, updated.TaskYears()["2025"])
}

func TestUpdateReplacesTemplateMapWholesale(t *testing.T) {
	db := newTestDB(t)
	coordinator := NewCoordinator(db, Locks.NewRecordLock())
	seedClient(t, db, 101, Models.TasksByYear{"2024": {"old"}}, nil)

	updated, err := coordinator.Update(101, &ClientPatch{
		CustomTasksByYear: map[string][]string{"2025": {"A", "B", "C"}},
		FinalizedYears:    []string{"2024"},
	})
	require.NoError(t, err)

	// Whole-map replace: 2024 is gone, not merged.
	assert.Equal(t, Models.TasksByYear{"2025": {"A", "B", "C"}}, updated.TaskYears())
	assert.Equal(t, []string{"2024"}, updated.FinalizedYears.Data())
}

func TestUpdateStampsRevisionEvenWithoutChanges(t *testing.T) {
	db := newTestDB(t)
	coordinator := NewCoordinator(db, Locks.NewRecordLock())
	client := seedClient(t, db, 101, nil, nil)
	before := client.UpdatedAt

	time.Sleep(10 * time.Millisecond)
	updated, err := coordinator.Update(101, &ClientPatch{})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(before),
		"empty patch must still advance the revision timestamp")
}

func TestUpdateMergesMonthlyTasks(t *testing.T) {
	db := newTestDB(t)
	coordinator := NewCoordinator(db, Locks.NewRecordLock())
	seedClient(t, db, 101, nil, nil)
	record := seedMonthly(t, db, 101, "2025年7月", Models.TaskChecks{"A": false, "B": false})

	updated, err := coordinator.Update(101, &ClientPatch{
		MonthlyTasks: []MonthlyTaskPatch{{
			ID:     &record.ID,
			Tasks:  map[string]bool{"A": true},
			Status: strPtr("月次完了"),
		}},
	})
	require.NoError(t, err)

	require.Len(t, updated.MonthlyTasks, 1)
	merged := updated.MonthlyTasks[0]
	// Key-by-key merge: B survives untouched.
	assert.Equal(t, Models.TaskChecks{"A": true, "B": false}, merged.Tasks.Data())
	assert.Equal(t, "月次完了", merged.Status)
	assert.Equal(t, "2025年7月", merged.Month)
}

func TestUpdateRejectsForeignMonthlyTask(t *testing.T) {
	db := newTestDB(t)
	coordinator := NewCoordinator(db, Locks.NewRecordLock())
	seedClient(t, db, 101, nil, nil)
	seedClient(t, db, 102, nil, nil)
	foreign := seedMonthly(t, db, 102, "2025年7月", Models.TaskChecks{"A": true})

	_, err := coordinator.Update(101, &ClientPatch{
		MonthlyTasks: []MonthlyTaskPatch{{
			ID:    &foreign.ID,
			Tasks: map[string]bool{"A": false},
		}},
	})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// The failed update must not commit anything, including the revision
	// stamp on the other client's record.
	var record Models.MonthlyTask
	require.NoError(t, db.First(&record, foreign.ID).Error)
	assert.Equal(t, Models.TaskChecks{"A": true}, record.Tasks.Data())
}

func TestUpdateCreatesMonthlyTaskOnlyWithContent(t *testing.T) {
	db := newTestDB(t)
	coordinator := NewCoordinator(db, Locks.NewRecordLock())
	seedClient(t, db, 101, nil, nil)

	updated, err := coordinator.Update(101, &ClientPatch{
		MonthlyTasks: []MonthlyTaskPatch{
			{Month: "2025年7月"}, // empty, skipped
			{Month: "2025年8月", Tasks: map[string]bool{"A": true}},
			{Month: "2025年9月", Memo: strPtr("要確認")},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.MonthlyTasks, 2)
	months := []string{}
	for _, record := range updated.MonthlyTasks {
		months = append(months, record.Month)
		if record.Month == "2025年9月" {
			assert.Equal(t, "要確認", record.Memo)
		}
	}
	assert.ElementsMatch(t, []string{"2025年8月", "2025年9月"}, months)
}

func TestUpdateClientNotFound(t *testing.T) {
	db := newTestDB(t)
	coordinator := NewCoordinator(db, Locks.NewRecordLock())

	_, err := coordinator.Update(999, &ClientPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	db := newTestDB(t)
	coordinator := NewCoordinator(db, Locks.NewRecordLock())
	seedClient(t, db, 101, nil, nil)

	// Two concurrent updates touching different fields: after both commit,
	// both fields must hold their caller's value. Interleaved
	// read-modify-write without the lock would lose one of them.
	var wg sync.WaitGroup
	patches := []*ClientPatch{
		{Name: strPtr("更新A")},
		{Status: strPtr("完了"), FiscalMonth: intPtr(6)},
	}
	for _, patch := range patches {
		wg.Add(1)
		go func(p *ClientPatch) {
			defer wg.Done()
			_, err := coordinator.Update(101, p)
			assert.NoError(t, err)
		}(patch)
	}
	wg.Wait()

	var client Models.Client
	require.NoError(t, db.First(&client, 101).Error)
	assert.Equal(t, "更新A", client.Name)
	assert.Equal(t, "完了", client.Status)
	assert.Equal(t, 6, client.FiscalMonth)
}
