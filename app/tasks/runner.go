package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskRunnerInterface = (*Runner)(nil)

// CompletionFunc receives every task exactly once, after its last attempt.
type CompletionFunc func(task TaskInterface, err error)

type Runner struct {
	workerCount int
	taskTimeout time.Duration
	retryDelay  time.Duration
	onComplete  CompletionFunc
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	pending     sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewRunner(ctx context.Context, workerCount, queueSize int, onComplete CompletionFunc) *Runner {
	runCtx, cancel := context.WithCancel(ctx)

	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if onComplete == nil {
		onComplete = func(TaskInterface, error) {}
	}

	return &Runner{
		workerCount: workerCount,
		taskTimeout: 5 * time.Minute,
		retryDelay:  time.Second,
		onComplete:  onComplete,
		ctx:         runCtx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, queueSize),
	}
}

func (r *Runner) Start() {
	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
}

// Wait blocks until every enqueued task has completed or the runner is cancelled.
func (r *Runner) Wait() {
	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-r.ctx.Done():
		slog.Warn("Task runner interrupted before all tasks completed")
	}
}

func (r *Runner) EnqueueTask(task TaskInterface) error {
	r.pending.Add(1)
	if err := r.enqueue(task); err != nil {
		r.pending.Done()
		return err
	}
	return nil
}

func (r *Runner) enqueue(task TaskInterface) error {
	select {
	case r.taskQueue <- task:
		return nil
	case <-r.ctx.Done():
		return r.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	for {
		select {
		case task := <-r.taskQueue:
			r.executeTask(id, task)

		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Runner) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(r.ctx, r.taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		r.complete(task, nil)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "target", task.GetTarget(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry(err) {
		if task.GetRetryCount() > 0 {
			slog.Error("Task failed after retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
		r.complete(task, err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := r.retryDelay * time.Duration(1<<uint(task.GetRetryCount()-1))
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "target", task.GetTarget(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-time.After(retryDelay):
		case <-r.ctx.Done():
			slog.Debug("Runner stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			r.complete(task, r.ctx.Err())
			return
		}

		if retryErr := r.enqueue(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			r.complete(task, err)
		}
	}()
}

func (r *Runner) complete(task TaskInterface, err error) {
	defer r.pending.Done()
	r.onComplete(task, err)
}
