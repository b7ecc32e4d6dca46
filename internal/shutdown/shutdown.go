// Package shutdown runs process cleanup tasks in reverse registration order.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"economy_server/internal/logger"
)

// Task should honor ctx and return an error if it cannot finish.
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	run  Task
}

// Queue is drained once. Later Add calls are ignored.
type Queue struct {
	mu      sync.Mutex
	tasks   []namedTask
	drained bool
}

func New() *Queue {
	return &Queue{}
}

// Add registers t under name. A nil task is ignored.
func (q *Queue) Add(name string, t Task) {
	if t == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.drained {
		return
	}
	q.tasks = append(q.tasks, namedTask{name: name, run: t})
}

// Shutdown runs every task, last registered first. Panics are recovered and
// reported as errors. If ctx ends mid-drain the remaining tasks are skipped.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.drained = true
	q.mu.Unlock()

	var errs []error
	for i := len(tasks) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown canceled before %s: %w", tasks[i].name, err))
			break
		}
		if err := runTask(ctx, tasks[i]); err != nil {
			logger.Error("shutdown task failed", "task", tasks[i].name, "error", err)
			errs = append(errs, err)
			continue
		}
		logger.Debug("shutdown task done", "task", tasks[i].name)
	}
	return errors.Join(errs...)
}

func runTask(ctx context.Context, t namedTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", t.name, r)
		}
	}()
	if err := t.run(ctx); err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}
	return nil
}
