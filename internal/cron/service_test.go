package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glassops/glassops-backend/pkg/logger"
	"github.com/glassops/glassops-backend/pkg/metrics"
)

type fakeLock struct {
	acquired bool
	held     bool
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held || f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.acquired = false; return nil }

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

func newTestCronService(t *testing.T, lock Lock, reg prometheus.Registerer, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)
	return svc
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "success"}
	bad := &testJob{name: "fail", err: errors.New("boom")}
	svc := newTestCronService(t, &fakeLock{}, prometheus.NewRegistry(), ok, bad)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, bad.runs)
}

func TestServiceRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "quote-archive"}
	svc := newTestCronService(t, &fakeLock{held: true}, prometheus.NewRegistry(), job)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Zero(t, job.runs)
}

func TestServiceRecordsJobOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := newTestCronService(t, &fakeLock{}, reg, &testJob{name: "quote-archive"}, &testJob{name: "broken", err: errors.New("x")})

	require.NoError(t, svc.runCycle(context.Background()))
	successes, err := testutil.GatherAndCount(reg, "glassops_cron_job_success_total")
	require.NoError(t, err)
	assert.Equal(t, 1, successes)
	failures, err := testutil.GatherAndCount(reg, "glassops_cron_job_failure_total")
	require.NoError(t, err)
	assert.Equal(t, 1, failures)
}

func TestNewServiceParsesSchedule(t *testing.T) {
	svc := newTestCronService(t, &fakeLock{}, prometheus.NewRegistry())
	from := time.Date(2026, 5, 10, 4, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, 5, 11, 3, 0, 0, 0, time.Local), svc.Next(from))

	_, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Lock:     &fakeLock{},
		Schedule: "every tuesday",
	})
	require.Error(t, err)
}

type signalJob struct {
	ran chan struct{}
}

func (s *signalJob) Name() string { return "signal" }

func (s *signalJob) Run(context.Context) error {
	s.ran <- struct{}{}
	return nil
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	job := &signalJob{ran: make(chan struct{}, 1)}
	svc, err := NewService(ServiceParams{
		Logger:     logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry:   NewRegistry(job),
		Lock:       &fakeLock{},
		Schedule:   "@yearly",
		RunOnStart: true,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case <-job.ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
