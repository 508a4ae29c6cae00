package core

import "time"

// TaskStatus tracks a task through its lifecycle.
type TaskStatus string

const (
	// TaskPending means no agent has started working on the task.
	TaskPending TaskStatus = "pending"
	// TaskRunning means the task is being worked on this run.
	TaskRunning TaskStatus = "running"
	// TaskComplete means the task finished with a result.
	TaskComplete TaskStatus = "complete"
	// TaskFailed means the task ended with an error.
	TaskFailed TaskStatus = "failed"
)

// Task is a unit of work agents collaborate on. Events emitted while a task
// is active are associated with it, which is what scopes the scheduler's
// continuation query to the current work.
//
// Tasks are mutated only by the single active turn; the run loop owns status
// transitions.
type Task struct {
	ID        string     `json:"id"`
	Objective string     `json:"objective"`
	Status    TaskStatus `json:"status"`
	Result    string     `json:"result,omitempty"`
	Created   time.Time  `json:"created"`
}

// NewTask creates a pending task with a generated id.
func NewTask(objective string) *Task {
	return &Task{
		ID:        NewID(),
		Objective: objective,
		Status:    TaskPending,
		Created:   time.Now().UTC(),
	}
}

// Complete marks the task finished with the given result.
func (t *Task) Complete(result string) {
	t.Status = TaskComplete
	t.Result = result
}

// Fail marks the task failed, recording the reason in Result.
func (t *Task) Fail(reason string) {
	t.Status = TaskFailed
	t.Result = reason
}

// IsDone reports whether the task reached a terminal status.
func (t *Task) IsDone() bool {
	return t.Status == TaskComplete || t.Status == TaskFailed
}
