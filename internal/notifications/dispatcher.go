package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glassops/glassops-backend/pkg/logger"
	"github.com/glassops/glassops-backend/pkg/metrics"
)

const (
	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeDropped = "dropped"

	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultTaskTimeout = 15 * time.Second
)

// Task is a unit of background delivery work.
type Task struct {
	Name    string
	Channel string
	Run     func(ctx context.Context) error
}

type queuedTask struct {
	ctx  context.Context
	task Task
}

// DispatcherParams configures the worker pool.
type DispatcherParams struct {
	Logger      *logger.Logger
	Metrics     *metrics.NotificationMetrics
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// Dispatcher runs notification tasks on a fixed pool of workers fed by a
// bounded queue. Submit never blocks; a full queue drops the task.
type Dispatcher struct {
	logg    *logger.Logger
	metrics *metrics.NotificationMetrics
	workers int
	timeout time.Duration
	queue   chan queuedTask

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup

	base  context.Context
	abort context.CancelFunc
}

func NewDispatcher(p DispatcherParams) (*Dispatcher, error) {
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Workers <= 0 {
		p.Workers = defaultWorkers
	}
	if p.QueueSize <= 0 {
		p.QueueSize = defaultQueueSize
	}
	if p.TaskTimeout <= 0 {
		p.TaskTimeout = defaultTaskTimeout
	}
	base, abort := context.WithCancel(context.Background())
	return &Dispatcher{
		logg:    p.Logger,
		metrics: p.Metrics,
		workers: p.Workers,
		timeout: p.TaskTimeout,
		queue:   make(chan queuedTask, p.QueueSize),
		base:    base,
		abort:   abort,
	}, nil
}

// Start launches the workers. Calling it more than once is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Submit enqueues a task. Logging fields on ctx are kept but its
// cancellation is not, so tasks outlive the request that created them.
// It reports whether the task was accepted.
func (d *Dispatcher) Submit(ctx context.Context, task Task) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	logCtx := d.logg.WithFields(ctx, map[string]any{
		"task":    task.Name,
		"channel": task.Channel,
	})
	if task.Run == nil {
		d.logg.Warn(logCtx, "notifications.task_invalid")
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.IncOutcome(task.Channel, outcomeDropped)
		d.logg.Warn(logCtx, "notifications.dispatcher_closed")
		return false
	}

	select {
	case d.queue <- queuedTask{ctx: context.WithoutCancel(logCtx), task: task}:
		d.metrics.SetQueueDepth(len(d.queue))
		return true
	default:
		d.metrics.IncOutcome(task.Channel, outcomeDropped)
		d.logg.Warn(logCtx, "notifications.queue_full")
		return false
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. If ctx
// expires first, in-flight tasks are canceled and ctx.Err() is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		d.dropQueued()
		d.abort()
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.abort()
		return nil
	case <-ctx.Done():
		d.abort()
		<-done
		return ctx.Err()
	}
}

// dropQueued discards tasks left in a closed queue that no worker will read.
func (d *Dispatcher) dropQueued() {
	for qt := range d.queue {
		d.metrics.IncOutcome(qt.task.Channel, outcomeDropped)
		d.logg.Warn(qt.ctx, "notifications.dropped_unstarted")
	}
	d.metrics.SetQueueDepth(0)
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for qt := range d.queue {
		d.metrics.SetQueueDepth(len(d.queue))
		d.run(qt)
	}
}

func (d *Dispatcher) run(qt queuedTask) {
	ctx, cancel := context.WithTimeout(qt.ctx, d.timeout)
	defer cancel()
	stop := context.AfterFunc(d.base, cancel)
	defer stop()

	start := time.Now()
	err := d.invoke(ctx, qt.task)
	ctx = d.logg.WithField(ctx, "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		d.metrics.IncOutcome(qt.task.Channel, outcomeFailed)
		d.logg.Error(ctx, "notifications.task_failed", err)
		return
	}
	d.metrics.IncOutcome(qt.task.Channel, outcomeSent)
	d.logg.Info(ctx, "notifications.task_sent")
}

func (d *Dispatcher) invoke(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Run(ctx)
}
