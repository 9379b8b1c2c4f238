package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

const librarySyncJob = "library-sync"

// StartJobs brings up the background scheduler. Scheduled runs go
// through the JobManager so they cannot overlap a manually triggered job.
func StartJobs(app JobContext) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	scheduleLibrarySync(s, app)

	log.Println("Background job scheduler started")
	s.StartAsync()
}

func scheduleLibrarySync(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().ScanInterval
	if interval == 0 {
		log.Println("Scan interval is 0, periodic library sync is disabled")
		return
	}

	log.Printf("Scheduling '%s' every %d minutes", librarySyncJob, interval)
	_, err := s.Every(interval).Minutes().Do(func() {
		if err := app.JobManager().RunJob(librarySyncJob, app); err != nil {
			log.Printf("Scheduled '%s' run skipped: %v", librarySyncJob, err)
		}
	})
	if err != nil {
		log.Printf("Failed to schedule '%s': %v", librarySyncJob, err)
	}
}
