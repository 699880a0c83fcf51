package a

import "context"

type Task struct {
	ID string
}

type RelationalDB interface {
	FindTaskByID(ctx context.Context, id string) (*Task, error)
	SaveTask(ctx context.Context, task *Task) error
	ListTasks(ctx context.Context, limit, offset int) ([]*Task, error)
}

func bad(ctx context.Context, ids []string, db RelationalDB) {
	for _, id := range ids {
		db.FindTaskByID(ctx, id) // want "potential N\\+1: FindTaskByID called inside loop"
	}
}

func badWrite(ctx context.Context, tasks []*Task, db RelationalDB) {
	for i := 0; i < len(tasks); i++ {
		db.SaveTask(ctx, tasks[i]) // want "potential N\\+1: SaveTask called inside loop"
	}
}

func good(ctx context.Context, db RelationalDB) {
	// One query, then iterate rows - should not flag
	tasks, _ := db.ListTasks(ctx, 50, 0)
	for _, t := range tasks {
		_ = t.ID
	}
}
