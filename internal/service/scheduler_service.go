package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"taskboard/internal/logger"
)

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	cronLog := cron.PrintfLogger(logger.StdLogger(slog.LevelWarn))
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *SchedulerService) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := DailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers a periodic job every given duration, rounded up to a second.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	return s.cron.Schedule(cron.Every(ceilSecond(interval)), cron.FuncJob(job)), nil
}

// ceilSecond rounds d up to a whole second; cron.Every would truncate it.
func ceilSecond(d time.Duration) time.Duration {
	return (d + time.Second - 1).Truncate(time.Second)
}

// Jobs returns the number of registered jobs.
func (s *SchedulerService) Jobs() int {
	return len(s.cron.Entries())
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// DailySpec converts HH:MM into a seconds-enabled cron spec.
func DailySpec(timeStr string) (string, error) {
	at, err := time.Parse("15:04", timeStr)
	if err != nil {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", at.Minute(), at.Hour()), nil
}
