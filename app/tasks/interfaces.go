package tasks

// TaskRunnerInterface runs a finite batch of tasks on a worker pool.
//
//	runner := NewRunner(ctx, workerCount, queueSize, onComplete)
//	runner.Start()
//	runner.EnqueueTask(task)
//	runner.Wait()
//	runner.Stop()
type TaskRunnerInterface interface {
	Start()
	Stop()
	Wait()
	EnqueueTask(task TaskInterface) error
}
