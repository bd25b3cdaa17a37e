package service

// Task represents a single task item.
type Task struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// List represents a to-do list and its tasks in creation order.
type List struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tasks       []Task `json:"tasks"`
}

// OpenTasks returns the tasks not yet completed.
func (l List) OpenTasks() []Task {
	var open []Task
	for _, t := range l.Tasks {
		if !t.Completed {
			open = append(open, t)
		}
	}
	return open
}

// Query selects lists. Zero values mean no skip and no search.
type Query struct {
	Skip int

	// Limit caps the number of lists returned; negative means no cap.
	Limit int

	// Search keeps lists whose name contains it.
	Search string
}

// AllLists is the query that returns every list.
var AllLists = Query{Limit: -1}
