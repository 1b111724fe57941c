package Presence

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"Kicho/Models"
)

// SessionTTL is the inactivity window after which an editing session no
// longer counts as active.
const SessionTTL = 10 * time.Minute

var ErrSessionNotFound = errors.New("no editing session for this editor")

// Tracker maintains the advisory "someone is editing this client" sessions.
// It never blocks a save; it only tells a second editor that another
// session is active. Every operation purges expired sessions first, so a
// stale session can never influence a decision.
type Tracker struct {
	DB *gorm.DB
}

func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{DB: db}
}

// Decision is the outcome of an edit-intent. When Allowed is false the
// client is held by EditorID since Since.
type Decision struct {
	Allowed  bool       `json:"allowed"`
	EditorID string     `json:"editor_id,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
}

// Status is the read-only presence report for a client.
type Status struct {
	Editing      bool       `json:"editing"`
	EditorID     string     `json:"editor_id,omitempty"`
	Since        *time.Time `json:"since,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// PurgeExpired deletes every session whose last activity is older than
// SessionTTL and returns how many were removed.
func (t *Tracker) PurgeExpired(now time.Time) (int64, error) {
	result := t.DB.Where("last_activity < ?", now.Add(-SessionTTL)).
		Delete(&Models.EditingSession{})
	return result.RowsAffected, result.Error
}

// AcquireOrReport registers edit-intent for a client. If a live session
// belongs to a different editor the call reports who holds it; if the same
// editor already has a session its activity is refreshed; otherwise a new
// session is created.
func (t *Tracker) AcquireOrReport(clientID uint, editorID string, now time.Time) (*Decision, error) {
	if _, err := t.PurgeExpired(now); err != nil {
		return nil, err
	}

	var existing Models.EditingSession
	err := t.DB.Where("client_id = ?", clientID).
		Order("started_at").First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err == nil {
		if existing.EditorID != editorID {
			since := existing.StartedAt
			return &Decision{Allowed: false, EditorID: existing.EditorID, Since: &since}, nil
		}
		if err := t.DB.Model(&existing).Update("last_activity", now).Error; err != nil {
			return nil, err
		}
		return &Decision{Allowed: true, EditorID: editorID}, nil
	}

	session := Models.EditingSession{
		ClientID:     clientID,
		EditorID:     editorID,
		StartedAt:    now,
		LastActivity: now,
	}
	if err := t.DB.Create(&session).Error; err != nil {
		return nil, err
	}
	return &Decision{Allowed: true, EditorID: editorID}, nil
}

// Touch refreshes an existing session's activity. It never creates one.
func (t *Tracker) Touch(clientID uint, editorID string, now time.Time) error {
	if _, err := t.PurgeExpired(now); err != nil {
		return err
	}
	result := t.DB.Model(&Models.EditingSession{}).
		Where("client_id = ? AND editor_id = ?", clientID, editorID).
		Update("last_activity", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Release deletes the editor's own session. Releasing a session that does
// not exist, or that belongs to someone else, is a no-op.
func (t *Tracker) Release(clientID uint, editorID string) error {
	return t.DB.Where("client_id = ? AND editor_id = ?", clientID, editorID).
		Delete(&Models.EditingSession{}).Error
}

// Status reports whether a live session exists for the client.
func (t *Tracker) Status(clientID uint, now time.Time) (*Status, error) {
	if _, err := t.PurgeExpired(now); err != nil {
		return nil, err
	}
	var session Models.EditingSession
	err := t.DB.Where("client_id = ?", clientID).
		Order("started_at").First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return &Status{Editing: false}, nil
	}
	if err != nil {
		return nil, err
	}
	since := session.StartedAt
	last := session.LastActivity
	return &Status{
		Editing:      true,
		EditorID:     session.EditorID,
		Since:        &since,
		LastActivity: &last,
	}, nil
}

// ForceRelease deletes every session for the client regardless of owner.
// Administrative override for a record stuck behind a departed editor.
func (t *Tracker) ForceRelease(clientID uint) (int64, error) {
	result := t.DB.Where("client_id = ?", clientID).
		Delete(&Models.EditingSession{})
	return result.RowsAffected, result.Error
}
