// Package scheduler drives the generation core on a fixed tick: a window seed
// at process start, then one run per tick plus the retention sweep.
package scheduler

import (
	"fmt"
	"time"

	"tripcore/internal/recurrence"
	"tripcore/internal/services"
	"tripcore/internal/utils"
)

// systemActorID attributes scheduled runs in generation_logs.
const systemActorID = 0

type Scheduler struct {
	Gen           services.GenerationService
	HorizonDays   int
	RetentionDays int
	Tick          time.Duration

	stop chan struct{}
}

// Window returns the [start, end] generation window rooted at now.
func Window(now time.Time, horizonDays int) (time.Time, time.Time) {
	if horizonDays < 1 {
		horizonDays = 1
	}
	start := recurrence.DateOnly(now)
	return start, start.AddDate(0, 0, horizonDays-1)
}

// Start seeds the upcoming window immediately and then keeps re-running on
// every tick. Errors are logged and the loop keeps going; a broken run must
// not kill the process.
func (s *Scheduler) Start() {
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})

	s.runOnce()

	go func() {
		tick := s.Tick
		if tick <= 0 {
			tick = 24 * time.Hour
		}
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Scheduler) runOnce() {
	start, end := Window(time.Now(), s.HorizonDays)

	created, err := s.Gen.GenerateForPeriod(start, end, systemActorID)
	if err != nil {
		utils.LogWarn("scheduler", "generate", fmt.Sprintf("window=%s..%s err=%v",
			utils.FormatDate(start), utils.FormatDate(end), err))
	} else {
		utils.LogEvent("", "scheduler", "generate", fmt.Sprintf("window=%s..%s created=%d",
			utils.FormatDate(start), utils.FormatDate(end), created))
	}

	if _, err := s.Gen.RetentionSweep(s.RetentionDays); err != nil {
		utils.LogWarn("scheduler", "retention_sweep", err.Error())
	}
}
