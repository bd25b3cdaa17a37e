package store

import (
	"strconv"
	"strings"

	"nztodo/internal/ident"
	"nztodo/internal/jsonvalue"
	"nztodo/internal/validate"
)

// List is a snapshot of a list and its tasks in creation order.
type List struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tasks       []Task `json:"tasks"`
}

type list struct {
	id          string
	name        string
	description string
	tasks       []*Task
	tasksByID   map[string]*Task
}

var (
	listSchema = validate.Schema{
		{Name: "name", Type: validate.String},
		{Name: "description", Type: validate.String},
		{Name: "tasks", Type: validate.Array},
	}
	listQuerySchema = validate.Schema{
		{Name: "skip", Type: validate.Uint32String},
		{Name: "limit", Type: validate.Uint32String},
		{Name: "search", Type: validate.String},
	}
)

func (l *list) addTask(g *ident.Generator, data *jsonvalue.Object) *Task {
	return buildTask(g, data, &l.tasks, l.tasksByID)
}

func (l *list) task(id any) (*Task, error) {
	return validate.Fetch(l.tasksByID, id, "Task")
}

func (l *list) snapshot() List {
	tasks := make([]Task, len(l.tasks))
	for i, t := range l.tasks {
		tasks[i] = *t
	}
	return List{
		ID:          l.id,
		Name:        l.name,
		Description: l.description,
		Tasks:       tasks,
	}
}

// NormalizeList defaults description to "" and tasks to [], validates the
// list shape, then normalizes every task. The first invalid task fails the
// whole list.
func NormalizeList(data any) (*jsonvalue.Object, error) {
	if obj, ok := data.(*jsonvalue.Object); ok {
		data = withDefaults(obj, "description", "", "tasks", []any{})
	}
	norm, err := validate.Data(data, listSchema)
	if err != nil {
		return nil, err
	}

	raw, _ := norm.Array("tasks")
	tasks := make([]any, len(raw))
	for i, td := range raw {
		nt, err := NormalizeTask(td)
		if err != nil {
			return nil, err
		}
		tasks[i] = nt
	}
	norm.Set("tasks", tasks)
	return norm, nil
}

// CreateList validates data and registers a new list with its tasks.
// It returns the list id and the task ids in order.
func (s *Store) CreateList(data any) (string, []string, error) {
	norm, err := NormalizeList(data)
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.buildList(norm)
	taskIDs := make([]string, len(l.tasks))
	for i, t := range l.tasks {
		taskIDs[i] = t.ID
	}
	return l.id, taskIDs, nil
}

func (s *Store) buildList(data *jsonvalue.Object) *list {
	name, _ := data.String("name")
	description, _ := data.String("description")
	tasks, _ := data.Array("tasks")

	l := &list{
		id:          ident.Issue(s.ids, s.lists),
		name:        name,
		description: description,
		tasksByID:   make(map[string]*Task, len(tasks)),
	}
	for _, td := range tasks {
		l.addTask(s.ids, td.(*jsonvalue.Object))
	}
	s.lists[l.id] = l
	s.order = append(s.order, l)
	return l
}

// GetList returns the list with the given id.
func (s *Store) GetList(id any) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.fetchList(id)
	if err != nil {
		return List{}, err
	}
	return l.snapshot(), nil
}

func (s *Store) fetchList(id any) (*list, error) {
	return validate.Fetch(s.lists, id, "List")
}

// ListLists pages and searches over lists in creation order.
//
// params takes skip, limit and search; they default to "0", the current
// list count, and "". skip and limit are uint32 strings. A non-empty search
// keeps lists whose name contains it (case-sensitive). Out-of-range skip or
// limit values yield whatever remains, possibly nothing.
func (s *Store) ListLists(params any) ([]List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if obj, ok := params.(*jsonvalue.Object); ok {
		params = withDefaults(obj,
			"skip", "0",
			"limit", strconv.Itoa(len(s.order)),
			"search", "",
		)
	}
	q, err := validate.Data(params, listQuerySchema)
	if err != nil {
		return nil, err
	}

	search, _ := q.String("search")
	rawSkip, _ := q.String("skip")
	rawLimit, _ := q.String("limit")
	skip, _ := validate.ParseUint32String(rawSkip)
	limit, _ := validate.ParseUint32String(rawLimit)

	matches := s.order
	if search != "" {
		matches = nil
		for _, l := range s.order {
			if strings.Contains(l.name, search) {
				matches = append(matches, l)
			}
		}
	}

	page := window(matches, uint64(skip), uint64(limit))
	result := make([]List, len(page))
	for i, l := range page {
		result[i] = l.snapshot()
	}
	return result, nil
}

// window drops the first skip items and keeps at most limit of the rest.
func window[T any](items []T, skip, limit uint64) []T {
	n := uint64(len(items))
	if skip >= n {
		return nil
	}
	end := n
	if limit < n-skip {
		end = skip + limit
	}
	return items[skip:end]
}
