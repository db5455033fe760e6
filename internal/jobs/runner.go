package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// Task is a background job driven by the shared cron.
type Task interface {
	ID() string
	Schedule() string
	Run()
}

type TaskExecutor struct {
	cron    *cron.Cron
	tasks   []Task
	running mapset.Set[string]
	mu      sync.Mutex
}

func NewTaskExecutor(tasks []Task) *TaskExecutor {
	return &TaskExecutor{
		cron:    cron.New(),
		tasks:   tasks,
		running: mapset.NewSet[string](),
	}
}

// Start schedules every task on the cron. A tick that fires while the
// previous run of the same task is still going is skipped.
func (t *TaskExecutor) Start() error {
	for _, task := range t.tasks {
		task := task
		err := t.cron.AddFunc(task.Schedule(), func() {
			t.mu.Lock()
			if t.running.Contains(task.ID()) {
				t.mu.Unlock()
				logrus.Warnf("task %s is still running, skipping", task.ID())
				return
			}
			t.running.Add(task.ID())
			t.mu.Unlock()

			defer func() {
				t.mu.Lock()
				defer t.mu.Unlock()
				t.running.Remove(task.ID())
			}()

			task.Run()
		})
		if err != nil {
			logrus.Errorf("failed to add task %s to cron: %v", task.ID(), err)
			return err
		}
	}

	t.cron.Start()
	return nil
}

func (t *TaskExecutor) Stop() {
	t.cron.Stop()
}
