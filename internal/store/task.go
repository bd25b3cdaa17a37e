package store

import (
	"nztodo/internal/ident"
	"nztodo/internal/jsonvalue"
	"nztodo/internal/validate"
)

// Task is a named unit of work inside one list.
type Task struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

var (
	taskSchema = validate.Schema{
		{Name: "name", Type: validate.String},
		{Name: "completed", Type: validate.Boolean},
	}
	completeSchema = validate.Schema{
		{Name: "completed", Type: validate.Boolean},
	}
)

// NormalizeTask defaults completed to false and validates the task shape
// {name: string, completed: boolean}. It returns the normalized copy.
func NormalizeTask(data any) (*jsonvalue.Object, error) {
	if obj, ok := data.(*jsonvalue.Object); ok {
		data = withDefaults(obj, "completed", false)
	}
	return validate.Data(data, taskSchema)
}

// buildTask creates a task from normalized data and registers it in both the
// ordered slice and the id index of its owner.
func buildTask(g *ident.Generator, data *jsonvalue.Object, tasks *[]*Task, byID map[string]*Task) *Task {
	name, _ := data.String("name")
	completed, _ := data.Bool("completed")

	t := &Task{
		ID:        ident.Issue(g, byID),
		Name:      name,
		Completed: completed,
	}
	*tasks = append(*tasks, t)
	byID[t.ID] = t
	return t
}

// CreateTask adds a task to the list identified by listID and returns the
// new task's id.
func (s *Store) CreateTask(listID any, data any) (string, error) {
	norm, err := NormalizeTask(data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.fetchList(listID)
	if err != nil {
		return "", err
	}
	return l.addTask(s.ids, norm).ID, nil
}

// GetTask returns task id of list listID.
func (s *Store) GetTask(listID, id any) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.fetchList(listID)
	if err != nil {
		return Task{}, err
	}
	t, err := l.task(id)
	if err != nil {
		return Task{}, err
	}
	return *t, nil
}

// CompleteTask sets the completed flag of a task. data must be exactly
// {completed: boolean}; any other key is rejected, even a valid task field.
func (s *Store) CompleteTask(listID, id any, data any) (Task, error) {
	norm, err := validate.Data(data, completeSchema)
	if err != nil {
		return Task{}, err
	}
	completed, _ := norm.Bool("completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.fetchList(listID)
	if err != nil {
		return Task{}, err
	}
	t, err := l.task(id)
	if err != nil {
		return Task{}, err
	}
	t.Completed = completed
	return *t, nil
}
