package Tasks

import (
	"fmt"
	"sort"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Kicho/Locks"
	"Kicho/Models"
)

// PropagationSpan is how many years past the source year a default
// propagation reaches.
const PropagationSpan = 9

// Propagator copies one year's task template forward to future years.
type Propagator struct {
	DB    *gorm.DB
	Locks *Locks.RecordLock
}

func NewPropagator(db *gorm.DB, locks *Locks.RecordLock) *Propagator {
	return &Propagator{DB: db, Locks: locks}
}

type PropagationResult struct {
	PropagatedTo []string `json:"propagated_to"`
	Tasks        []string `json:"tasks"`
}

// Propagate overwrites each target year's task list with a copy of the
// source year's. Finalized target years are silently skipped, never
// reported as errors. With no explicit targets the next PropagationSpan
// years are used. The whole operation is one commit.
func (p *Propagator) Propagate(clientID uint, sourceYear string, targetYears []string) (*PropagationResult, error) {
	if sourceYear == "" {
		return nil, fmt.Errorf("%w: source year is required", ErrValidation)
	}

	var result *PropagationResult
	err := p.Locks.WithTx(p.DB, clientID, func(tx *gorm.DB) error {
		var client Models.Client
		if err := tx.First(&client, clientID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrClientNotFound
			}
			return err
		}

		tasks := client.TaskYears()
		source := tasks[sourceYear]
		if len(source) == 0 {
			return ErrTemplateNotFound
		}

		targets := targetYears
		if len(targets) == 0 {
			base, err := strconv.Atoi(sourceYear)
			if err != nil {
				return fmt.Errorf("%w: source year %q is not numeric", ErrValidation, sourceYear)
			}
			for offset := 1; offset <= PropagationSpan; offset++ {
				targets = append(targets, strconv.Itoa(base+offset))
			}
		}

		finalized := client.FinalizedSet()
		propagated := []string{}
		for _, year := range targets {
			if finalized[year] || year == sourceYear {
				continue
			}
			tasks[year] = append([]string{}, source...)
			propagated = append(propagated, year)
		}
		sort.Strings(propagated)

		client.CustomTasksByYear = datatypes.NewJSONType(tasks)
		if err := tx.Save(&client).Error; err != nil {
			return err
		}

		result = &PropagationResult{
			PropagatedTo: propagated,
			Tasks:        append([]string{}, source...),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
