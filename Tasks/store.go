package Tasks

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Kicho/Locks"
	"Kicho/Models"
)

// TemplateStore owns a client's year -> task-list map and its finalized
// years. Finalization is advisory here: SetYear does not check it, callers
// decide whether a finalized year may be overwritten (the HTTP layer
// refuses, propagation silently skips).
type TemplateStore struct {
	DB    *gorm.DB
	Locks *Locks.RecordLock
}

func NewTemplateStore(db *gorm.DB, locks *Locks.RecordLock) *TemplateStore {
	return &TemplateStore{DB: db, Locks: locks}
}

// Years returns the stored template map and the finalized-year list.
func (s *TemplateStore) Years(clientID uint) (Models.TasksByYear, []string, error) {
	var client Models.Client
	if err := s.DB.First(&client, clientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrClientNotFound
		}
		return nil, nil, err
	}
	finalized := client.FinalizedYears.Data()
	if finalized == nil {
		finalized = []string{}
	}
	return client.TaskYears(), finalized, nil
}

// SetYear replaces the task list for one year. Whole-list overwrite, not a
// merge.
func (s *TemplateStore) SetYear(clientID uint, year string, taskNames []string) error {
	return s.Locks.WithTx(s.DB, clientID, func(tx *gorm.DB) error {
		var client Models.Client
		if err := tx.First(&client, clientID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrClientNotFound
			}
			return err
		}
		tasks := client.TaskYears()
		tasks[year] = append([]string{}, taskNames...)
		client.CustomTasksByYear = datatypes.NewJSONType(tasks)
		return tx.Save(&client).Error
	})
}
