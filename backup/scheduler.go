package backup

import (
	"time"

	"github.com/wfunc/boardvault/logger"
	"github.com/wfunc/boardvault/models"
)

// Scheduler writes periodic snapshots of the collection. It is the safety
// net for a store whose only other backup is a manual export.
type Scheduler struct {
	dir      string
	interval time.Duration
	source   func() []models.BoardGame
	done     chan struct{}
}

func NewScheduler(dir string, interval time.Duration, source func() []models.BoardGame) *Scheduler {
	return &Scheduler{
		dir:      dir,
		interval: interval,
		source:   source,
		done:     make(chan struct{}),
	}
}

// Start launches the snapshot loop. A missing dir or non-positive interval
// disables the scheduler without error.
func (s *Scheduler) Start() {
	if s.dir == "" || s.interval <= 0 {
		return
	}
	go s.run()
}

func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			path, err := WriteSnapshot(s.dir, s.source())
			if err != nil {
				logger.Log.Errorf("Snapshot backup failed: %v", err)
				continue
			}
			logger.Log.Infof("Wrote snapshot backup %s", path)
		case <-s.done:
			return
		}
	}
}
