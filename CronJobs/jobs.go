package CronJobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"Kicho/Presence"
)

// SessionSweeper periodically purges expired editing sessions. Presence
// operations already purge on entry; the sweeper keeps the table small
// while nobody is looking at a client.
type SessionSweeper struct {
	cronScheduler *cron.Cron
	tracker       *Presence.Tracker
	jobID         cron.EntryID
}

func NewSessionSweeper(tracker *Presence.Tracker) *SessionSweeper {
	return &SessionSweeper{
		cronScheduler: cron.New(cron.WithSeconds()),
		tracker:       tracker,
	}
}

// Start schedules the sweep for every minute.
func (s *SessionSweeper) Start() error {
	var err error
	s.jobID, err = s.cronScheduler.AddFunc("0 * * * * *", func() {
		removed, err := s.tracker.PurgeExpired(time.Now())
		if err != nil {
			log.Println("Session sweep failed:", err)
			return
		}
		if removed > 0 {
			log.Printf("Session sweep removed %d expired sessions", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	s.cronScheduler.Start()
	return nil
}

// Stop terminates the sweeper.
func (s *SessionSweeper) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
		log.Println("Session sweeper stopped")
	}
}
