package service

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailySpec(t *testing.T) {
	spec, err := DailySpec("09:05")
	require.NoError(t, err)
	assert.Equal(t, "0 5 9 * * *", spec)

	spec, err = DailySpec("23:59")
	require.NoError(t, err)
	assert.Equal(t, "0 59 23 * * *", spec)

	for _, bad := range []string{"", "9am", "25:00", "12:60"} {
		_, err := DailySpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchedulerService_Register(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	_, err := s.ScheduleDaily("08:30", func() {})
	require.NoError(t, err)
	_, err = s.ScheduleInterval(90*time.Minute, func() {})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Jobs())

	_, err = s.ScheduleDaily("noon", func() {})
	assert.Error(t, err)
	_, err = s.ScheduleInterval(0, func() {})
	assert.Error(t, err)
	assert.Equal(t, 2, s.Jobs())
}

func TestSchedulerService_IntervalRoundsUp(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	for interval, want := range map[time.Duration]time.Duration{
		1400 * time.Millisecond: 2 * time.Second,
		2 * time.Second:         2 * time.Second,
		time.Millisecond:        time.Second,
	} {
		id, err := s.ScheduleInterval(interval, func() {})
		require.NoError(t, err)
		schedule, ok := s.cron.Entry(id).Schedule.(cron.ConstantDelaySchedule)
		require.True(t, ok)
		assert.Equal(t, want, schedule.Delay, interval)
	}
}

func TestSchedulerService_RunsIntervalJob(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	ran := make(chan struct{}, 1)
	_, err := s.ScheduleInterval(time.Second, func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("interval job did not run")
	}
}
