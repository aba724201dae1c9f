package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBudgetIntegrity re-checks the semester hour ceiling across all users.
	TaskBudgetIntegrity = "budget:integrity"
	// TaskCostWarmup pre-populates cost summary caches for a period.
	TaskCostWarmup = "cost:warmup"
)

// BudgetIntegrityPayload scopes the integrity scan to a period, or to every
// period when zero-valued.
type BudgetIntegrityPayload struct {
	Year     int    `json:"year,omitempty"`
	Semester string `json:"semester,omitempty"`
}

// NewBudgetIntegrityTask constructs an Asynq task.
func NewBudgetIntegrityTask(payload BudgetIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBudgetIntegrity, data), nil
}

// CostWarmupPayload names the period whose summaries should be rebuilt.
type CostWarmupPayload struct {
	Year     int    `json:"year"`
	Semester string `json:"semester"`
}

// NewCostWarmupTask constructs an Asynq task.
func NewCostWarmupTask(payload CostWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCostWarmup, data), nil
}
