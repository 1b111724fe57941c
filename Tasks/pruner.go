package Tasks

import (
	"fmt"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Kicho/Locks"
	"Kicho/Models"
)

// Pruner removes deleted task names from a client's historical monthly
// checklists, after the names have already been removed from the template.
type Pruner struct {
	DB    *gorm.DB
	Locks *Locks.RecordLock
}

func NewPruner(db *gorm.DB, locks *Locks.RecordLock) *Pruner {
	return &Pruner{DB: db, Locks: locks}
}

type PruneResult struct {
	RemovedCount int `json:"removed_count"`
}

// Prune strips each deleted name from every monthly record of the client.
// The sweep intentionally covers all months, not just the given year: the
// system this replaces behaved that way and months recorded before a
// template change may carry the name under any year label. The year is
// still logged so the wide sweep stays visible.
func (p *Pruner) Prune(clientID uint, year string, deletedTaskNames []string) (*PruneResult, error) {
	if len(deletedTaskNames) == 0 {
		return nil, fmt.Errorf("%w: no task names to prune", ErrValidation)
	}

	result := &PruneResult{}
	err := p.Locks.WithTx(p.DB, clientID, func(tx *gorm.DB) error {
		var client Models.Client
		if err := tx.First(&client, clientID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrClientNotFound
			}
			return err
		}

		var records []Models.MonthlyTask
		if err := tx.Where("client_id = ?", clientID).Find(&records).Error; err != nil {
			return err
		}

		for i := range records {
			checks := records[i].Tasks.Data()
			changed := false
			for _, name := range deletedTaskNames {
				if _, ok := checks[name]; ok {
					delete(checks, name)
					result.RemovedCount++
					changed = true
				}
			}
			if !changed {
				continue
			}
			records[i].Tasks = datatypes.NewJSONType(checks)
			if err := tx.Model(&records[i]).Update("tasks", records[i].Tasks).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Pruned %d task entries for client %d (requested year %s)",
		result.RemovedCount, clientID, year)
	return result, nil
}
