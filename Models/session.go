package Models

import "time"

// EditingSession is an advisory presence marker: a specific editor is
// working on a specific client. Sessions expire by inactivity and are
// purged before every presence decision, so a crashed browser never
// wedges a client record.
type EditingSession struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ClientID     uint      `json:"client_id" gorm:"not null;index"`
	EditorID     string    `json:"editor_id" gorm:"size:255;not null"`
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity" gorm:"index"`
}
