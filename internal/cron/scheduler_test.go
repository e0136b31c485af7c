package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/angelmondragon/hangout-backend/pkg/logger"
	"github.com/angelmondragon/hangout-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	held     bool
	busy     bool
	unlocks  int
	tryError error
}

func (f *fakeLock) TryLock(context.Context) (bool, error) {
	if f.tryError != nil {
		return false, f.tryError
	}
	if f.busy || f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Unlock(context.Context) error {
	f.held = false
	f.unlocks++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry(&testJob{name: "a"}, &testJob{name: "a"})
	require.Error(t, err)

	_, err = NewRegistry(&testJob{name: ""})
	require.Error(t, err)

	reg, err := NewRegistry(&testJob{name: "a"}, &testJob{name: "b"})
	require.NoError(t, err)
	assert.Len(t, reg.Jobs(), 2)
}

func TestTickRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	bad := &testJob{name: "bad", err: errors.New("boom")}
	after := &testJob{name: "after"}
	reg, err := NewRegistry(ok, bad, after)
	require.NoError(t, err)

	lock := &fakeLock{}
	promReg := prometheus.NewRegistry()
	s, err := NewScheduler(SchedulerParams{
		Logger:   quietLogger(),
		Registry: reg,
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(promReg),
	})
	require.NoError(t, err)

	err = s.Tick(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "bad: boom")
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, bad.runs)
	assert.Equal(t, 1, after.runs)
	assert.Equal(t, 1, lock.unlocks)
	assert.False(t, lock.held)

	mfs, err := promReg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestTickSkipsWhenLockHeldElsewhere(t *testing.T) {
	job := &testJob{name: "only"}
	reg, err := NewRegistry(job)
	require.NoError(t, err)

	lock := &fakeLock{busy: true}
	s, err := NewScheduler(SchedulerParams{Logger: quietLogger(), Registry: reg, Lock: lock})
	require.NoError(t, err)

	require.NoError(t, s.Tick(context.Background()))
	assert.Zero(t, job.runs)
	assert.Zero(t, lock.unlocks)
}

func TestTickReturnsLockErrors(t *testing.T) {
	reg, err := NewRegistry(&testJob{name: "only"})
	require.NoError(t, err)

	s, err := NewScheduler(SchedulerParams{
		Logger:   quietLogger(),
		Registry: reg,
		Lock:     &fakeLock{tryError: errors.New("redis down")},
	})
	require.NoError(t, err)
	assert.ErrorContains(t, s.Tick(context.Background()), "redis down")
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "only"}
	reg, err := NewRegistry(job)
	require.NoError(t, err)
	s, err := NewScheduler(SchedulerParams{Logger: quietLogger(), Registry: reg, Lock: &fakeLock{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSchedulerValidatesParams(t *testing.T) {
	reg, _ := NewRegistry()
	_, err := NewScheduler(SchedulerParams{Registry: reg, Lock: &fakeLock{}})
	assert.Error(t, err)
	_, err = NewScheduler(SchedulerParams{Logger: quietLogger(), Registry: reg})
	assert.Error(t, err)
	_, err = NewScheduler(SchedulerParams{Logger: quietLogger(), Lock: &fakeLock{}})
	assert.Error(t, err)
}
