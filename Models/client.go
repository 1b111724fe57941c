package Models

import (
	"time"

	"gorm.io/datatypes"
)

// TasksByYear maps a fiscal year key ("2025") to the ordered task list for
// that year.
type TasksByYear map[string][]string

// TaskChecks maps a task name to its completion state for one month.
type TaskChecks map[string]bool

// Accounting methods. AGENCY clients have their books kept by the office,
// SELF clients keep their own.
const (
	MethodAgency = "AGENCY"
	MethodSelf   = "SELF"
)

type Client struct {
	// ID is assigned by the caller (the office's own client number), not
	// generated by the database.
	ID                uint                            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name              string                          `json:"name" gorm:"size:255;not null"`
	FiscalMonth       int                             `json:"fiscal_month" gorm:"not null"`
	StaffID           uint                            `json:"staff_id" gorm:"not null;index"`
	AccountingMethod  string                          `json:"accounting_method" gorm:"size:50"`
	Status            string                          `json:"status" gorm:"size:255"`
	Inactive          bool                            `json:"inactive" gorm:"not null;default:false"`
	CustomTasksByYear datatypes.JSONType[TasksByYear] `json:"custom_tasks_by_year"`
	FinalizedYears    datatypes.JSONType[[]string]    `json:"finalized_years"`
	CreatedAt         time.Time                       `json:"created_at"`
	UpdatedAt         time.Time                       `json:"updated_at"`

	// Relationships
	Staff        Staff         `json:"staff,omitempty" gorm:"foreignKey:StaffID"`
	MonthlyTasks []MonthlyTask `json:"monthly_tasks,omitempty" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// TaskYears returns the per-year template map, never nil.
func (c *Client) TaskYears() TasksByYear {
	m := c.CustomTasksByYear.Data()
	if m == nil {
		m = TasksByYear{}
	}
	return m
}

// FinalizedSet returns the finalized years as a lookup set.
func (c *Client) FinalizedSet() map[string]bool {
	set := make(map[string]bool)
	for _, y := range c.FinalizedYears.Data() {
		set[y] = true
	}
	return set
}

// IsFinalized reports whether the template for year is frozen.
func (c *Client) IsFinalized(year string) bool {
	return c.FinalizedSet()[year]
}

// MonthlyTask is one month's checklist instance for a client. Month is a
// display label like "2025年7月".
type MonthlyTask struct {
	ID        uint                           `json:"id" gorm:"primaryKey"`
	ClientID  uint                           `json:"client_id" gorm:"not null;index"`
	Month     string                         `json:"month" gorm:"size:255;not null"`
	Tasks     datatypes.JSONType[TaskChecks] `json:"tasks"`
	Status    string                         `json:"status" gorm:"size:255"`
	URL       string                         `json:"url" gorm:"size:255"`
	Memo      string                         `json:"memo" gorm:"type:text"`
	CreatedAt time.Time                      `json:"created_at"`
	UpdatedAt time.Time                      `json:"updated_at"`
}

// DefaultTaskTemplate holds the task list assigned to newly created clients
// of an accounting method, one row per method.
type DefaultTaskTemplate struct {
	Method    string                       `json:"method" gorm:"primaryKey;size:50"`
	Tasks     datatypes.JSONType[[]string] `json:"tasks"`
	UpdatedAt time.Time                    `json:"updated_at"`
}
