package camunda

import (
	"fmt"

	"lead-triage/internal/common/logger"
)

// Worker is a job handler that can open and close its own Zeebe job worker.
type Worker interface {
	Register() error
	Close()
	GetTaskType() string
	IsEnabled() bool
}

// Group registers a set of workers together and closes them in reverse order.
type Group struct {
	logger     logger.Logger
	workers    []Worker
	registered []Worker
}

func NewGroup(log logger.Logger, workers ...Worker) *Group {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Group{logger: log, workers: workers}
}

// Start registers every enabled worker. If one fails, the ones already
// registered are closed again.
func (g *Group) Start() error {
	for _, w := range g.workers {
		if !w.IsEnabled() {
			g.logger.Info("worker disabled, skipping", map[string]interface{}{
				"taskType": w.GetTaskType(),
			})
			continue
		}
		if err := w.Register(); err != nil {
			g.Close()
			return fmt.Errorf("failed to register worker %s: %w", w.GetTaskType(), err)
		}
		g.registered = append(g.registered, w)
	}

	g.logger.Info("workers started", map[string]interface{}{
		"taskTypes": g.TaskTypes(),
	})
	return nil
}

// TaskTypes lists the task types currently registered.
func (g *Group) TaskTypes() []string {
	types := make([]string, 0, len(g.registered))
	for _, w := range g.registered {
		types = append(types, w.GetTaskType())
	}
	return types
}

func (g *Group) Close() {
	for i := len(g.registered) - 1; i >= 0; i-- {
		w := g.registered[i]
		g.logger.Info("stopping worker", map[string]interface{}{
			"taskType": w.GetTaskType(),
		})
		w.Close()
	}
	g.registered = nil
}
