package Tasks

import (
	"sort"

	"gorm.io/gorm"

	"Kicho/Models"
)

// Reconciler compares a caller's cached task templates against the stored
// ones. Read-only: it mutates neither side, it only reports drift.
type Reconciler struct {
	DB *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{DB: db}
}

type YearMismatch struct {
	Year              string   `json:"year"`
	CallerTasks       []string `json:"caller_tasks"`
	ServerTasks       []string `json:"server_tasks"`
	MissingFromCaller []string `json:"missing_from_caller"`
	MissingFromServer []string `json:"missing_from_server"`
}

type DiffResult struct {
	InSync            bool               `json:"in_sync"`
	Mismatches        []YearMismatch     `json:"mismatches"`
	ServerTasksByYear Models.TasksByYear `json:"server_tasks_by_year"`
}

// Diff compares per year as sets: order and duplicates are ignored, only
// membership counts. A year present on either side with differing sets
// produces one mismatch entry.
func (r *Reconciler) Diff(clientID uint, callerTasksByYear map[string][]string) (*DiffResult, error) {
	var client Models.Client
	if err := r.DB.First(&client, clientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	server := client.TaskYears()

	years := make(map[string]bool)
	for y := range callerTasksByYear {
		years[y] = true
	}
	for y := range server {
		years[y] = true
	}
	ordered := make([]string, 0, len(years))
	for y := range years {
		ordered = append(ordered, y)
	}
	sort.Strings(ordered)

	result := &DiffResult{
		InSync:            true,
		Mismatches:        []YearMismatch{},
		ServerTasksByYear: server,
	}
	for _, year := range ordered {
		callerSet := toSet(callerTasksByYear[year])
		serverSet := toSet(server[year])

		missingFromCaller := difference(serverSet, callerSet)
		missingFromServer := difference(callerSet, serverSet)
		if len(missingFromCaller) == 0 && len(missingFromServer) == 0 {
			continue
		}

		result.InSync = false
		result.Mismatches = append(result.Mismatches, YearMismatch{
			Year:              year,
			CallerTasks:       emptyIfNil(callerTasksByYear[year]),
			ServerTasks:       emptyIfNil(server[year]),
			MissingFromCaller: missingFromCaller,
			MissingFromServer: missingFromServer,
		})
	}
	return result, nil
}

func toSet(tasks []string) map[string]bool {
	set := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		set[t] = true
	}
	return set
}

// difference returns the members of a that are absent from b, sorted.
func difference(a, b map[string]bool) []string {
	out := []string{}
	for t := range a {
		if !b[t] {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func emptyIfNil(tasks []string) []string {
	if tasks == nil {
		return []string{}
	}
	return tasks
}
