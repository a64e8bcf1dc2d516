// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"contract-query-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler completes, fails or throws on every job it receives.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// WorkerOptions tune one job worker subscription.
type WorkerOptions struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

func NewWorker(client zbc.Client, opts WorkerOptions, handler JobHandler, log logger.Logger) *CamundaWorker {
	log = log.With(map[string]interface{}{"taskType": opts.TaskType})

	step := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(handler.Handle).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}

	w := &CamundaWorker{
		worker:   step.Open(),
		logger:   log,
		taskType: opts.TaskType,
	}
	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": opts.MaxJobsActive,
		"timeout":       opts.Timeout.String(),
	})
	return w
}

// Stop closes the subscription and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
