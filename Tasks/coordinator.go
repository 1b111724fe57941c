package Tasks

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Kicho/Locks"
	"Kicho/Models"
)

// ClientPatch carries a partial client update. Pointer fields follow
// "present and non-null wins, otherwise keep the existing value"; the two
// maps are whole replacements, never merges.
type ClientPatch struct {
	Name              *string             `json:"name"`
	FiscalMonth       *int                `json:"fiscal_month" validate:"omitempty,min=1,max=12"`
	StaffID           *uint               `json:"staff_id"`
	AccountingMethod  *string             `json:"accounting_method" validate:"omitempty,oneof=AGENCY SELF"`
	Status            *string             `json:"status"`
	Inactive          *bool               `json:"inactive"`
	CustomTasksByYear map[string][]string `json:"custom_tasks_by_year"`
	FinalizedYears    []string            `json:"finalized_years"`
	MonthlyTasks      []MonthlyTaskPatch  `json:"monthly_tasks" validate:"omitempty,dive"`
}

// MonthlyTaskPatch updates one monthly record when ID is set, otherwise
// requests creation of a new one. Tasks entries are merged into the
// existing completion map key by key.
type MonthlyTaskPatch struct {
	ID     *uint           `json:"id"`
	Month  string          `json:"month"`
	Tasks  map[string]bool `json:"tasks"`
	Status *string         `json:"status"`
	URL    *string         `json:"url"`
	Memo   *string         `json:"memo"`
}

// hasContent reports whether a patch without an id carries enough to be
// worth a new monthly record.
func (p *MonthlyTaskPatch) hasContent() bool {
	if len(p.Tasks) > 0 {
		return true
	}
	if p.Memo != nil && *p.Memo != "" {
		return true
	}
	if p.URL != nil && *p.URL != "" {
		return true
	}
	return false
}

// Coordinator applies a full client update as one locked read-modify-write:
// acquire the record lock, patch fields and templates, upsert monthly
// records, stamp the revision, commit. Two concurrent updates for the same
// client are fully serialized; the later one reads the earlier one's
// committed state before applying its own patch.
type Coordinator struct {
	DB    *gorm.DB
	Locks *Locks.RecordLock
}

func NewCoordinator(db *gorm.DB, locks *Locks.RecordLock) *Coordinator {
	return &Coordinator{DB: db, Locks: locks}
}

// Update applies patch to the client and returns the reloaded record with
// staff and monthly tasks attached, the authoritative post-update state.
// UpdatedAt is stamped even when no field changed, so downstream staleness
// checks treat the save as a new revision.
func (c *Coordinator) Update(clientID uint, patch *ClientPatch) (*Models.Client, error) {
	var updated Models.Client
	err := c.Locks.WithTx(c.DB, clientID, func(tx *gorm.DB) error {
		var client Models.Client
		if err := tx.First(&client, clientID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrClientNotFound
			}
			return err
		}

		if patch.Name != nil {
			client.Name = *patch.Name
		}
		if patch.FiscalMonth != nil {
			client.FiscalMonth = *patch.FiscalMonth
		}
		if patch.StaffID != nil {
			client.StaffID = *patch.StaffID
		}
		if patch.AccountingMethod != nil {
			client.AccountingMethod = *patch.AccountingMethod
		}
		if patch.Status != nil {
			client.Status = *patch.Status
		}
		if patch.Inactive != nil {
			client.Inactive = *patch.Inactive
		}
		if patch.CustomTasksByYear != nil {
			replacement := Models.TasksByYear{}
			for year, tasks := range patch.CustomTasksByYear {
				replacement[year] = append([]string{}, tasks...)
			}
			client.CustomTasksByYear = datatypes.NewJSONType(replacement)
		}
		if patch.FinalizedYears != nil {
			client.FinalizedYears = datatypes.NewJSONType(append([]string{}, patch.FinalizedYears...))
		}

		for i := range patch.MonthlyTasks {
			if err := c.applyMonthlyPatch(tx, clientID, &patch.MonthlyTasks[i]); err != nil {
				return err
			}
		}

		client.UpdatedAt = time.Now()
		if err := tx.Save(&client).Error; err != nil {
			return err
		}

		return tx.Preload("Staff").Preload("MonthlyTasks").
			First(&updated, clientID).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Coordinator) applyMonthlyPatch(tx *gorm.DB, clientID uint, patch *MonthlyTaskPatch) error {
	if patch.ID == nil {
		if !patch.hasContent() {
			return nil
		}
		checks := Models.TaskChecks{}
		for name, done := range patch.Tasks {
			checks[name] = done
		}
		record := Models.MonthlyTask{
			ClientID: clientID,
			Month:    patch.Month,
			Tasks:    datatypes.NewJSONType(checks),
		}
		if patch.Status != nil {
			record.Status = *patch.Status
		}
		if patch.URL != nil {
			record.URL = *patch.URL
		}
		if patch.Memo != nil {
			record.Memo = *patch.Memo
		}
		return tx.Create(&record).Error
	}

	// The client_id clause is the ownership check: an id that exists under
	// another client reads as not found.
	var record Models.MonthlyTask
	err := tx.Where("id = ? AND client_id = ?", *patch.ID, clientID).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return ErrTaskNotFound
	}
	if err != nil {
		return err
	}

	if len(patch.Tasks) > 0 {
		checks := record.Tasks.Data()
		if checks == nil {
			checks = Models.TaskChecks{}
		}
		for name, done := range patch.Tasks {
			checks[name] = done
		}
		record.Tasks = datatypes.NewJSONType(checks)
	}
	if patch.Month != "" {
		record.Month = patch.Month
	}
	if patch.Status != nil {
		record.Status = *patch.Status
	}
	if patch.URL != nil {
		record.URL = *patch.URL
	}
	if patch.Memo != nil {
		record.Memo = *patch.Memo
	}
	return tx.Save(&record).Error
}
