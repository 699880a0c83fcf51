package entities

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// The closed set of task statuses, in workflow order.
const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "inprogress"
	StatusInReview   TaskStatus = "inreview"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

// AllTaskStatuses returns every valid status in workflow order.
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{StatusTodo, StatusInProgress, StatusInReview, StatusDone, StatusCancelled}
}

// IsValid reports whether s is one of the known task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// StatusSet is an ordered collection of task statuses. It is persisted as a
// JSON array in a TEXT column.
type StatusSet []TaskStatus

// Contains reports whether the set includes the given status.
func (ss StatusSet) Contains(status TaskStatus) bool {
	for _, s := range ss {
		if s == status {
			return true
		}
	}
	return false
}

// Validate returns the first status in the set that is not a known
// TaskStatus, or "" if all are valid.
func (ss StatusSet) Validate() TaskStatus {
	for _, s := range ss {
		if !s.IsValid() {
			return s
		}
	}
	return ""
}
