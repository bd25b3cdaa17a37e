// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"

	"nztodo/internal/jsonvalue"
	"nztodo/internal/service"
	"nztodo/internal/store"
)

// FakeService is an in-process implementation of service.Service for
// testing. It runs requests against a real store, so validation and error
// messages match the server's.
type FakeService struct {
	Store *store.Store

	// Error injection for testing
	ListListsErr    error
	GetListErr      error
	CreateListErr   error
	CreateTaskErr   error
	GetTaskErr      error
	CompleteTaskErr error
}

// NewFakeService creates a FakeService over an empty store.
func NewFakeService() *FakeService {
	return &FakeService{Store: store.New()}
}

// AddList creates a list with open tasks named taskNames and returns the
// list id and task ids.
func (f *FakeService) AddList(name string, taskNames ...string) (string, []string) {
	tasks := make([]any, len(taskNames))
	for i, n := range taskNames {
		tasks[i] = jsonvalue.ObjectOf("name", n)
	}
	id, taskIDs, err := f.Store.CreateList(jsonvalue.ObjectOf("name", name, "tasks", tasks))
	if err != nil {
		panic(err)
	}
	return id, taskIDs
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context, q service.Query) ([]service.List, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	params := jsonvalue.NewObject()
	if q.Skip != 0 {
		params.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit >= 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}

	lists, err := f.Store.ListLists(params)
	if err != nil {
		return nil, err
	}
	result := make([]service.List, len(lists))
	for i, l := range lists {
		result[i] = toList(l)
	}
	return result, nil
}

// GetList implements service.Service.
func (f *FakeService) GetList(ctx context.Context, listID string) (service.List, error) {
	if f.GetListErr != nil {
		return service.List{}, f.GetListErr
	}
	l, err := f.Store.GetList(listID)
	if err != nil {
		return service.List{}, err
	}
	return toList(l), nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, name, description string) (string, error) {
	if f.CreateListErr != nil {
		return "", f.CreateListErr
	}
	id, _, err := f.Store.CreateList(jsonvalue.ObjectOf("name", name, "description", description))
	return id, err
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, listID, name string) (string, error) {
	if f.CreateTaskErr != nil {
		return "", f.CreateTaskErr
	}
	return f.Store.CreateTask(listID, jsonvalue.ObjectOf("name", name))
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, listID, taskID string) (service.Task, error) {
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	t, err := f.Store.GetTask(listID, taskID)
	if err != nil {
		return service.Task{}, err
	}
	return toTask(t), nil
}

// CompleteTask implements service.Service.
func (f *FakeService) CompleteTask(ctx context.Context, listID, taskID string, completed bool) (service.Task, error) {
	if f.CompleteTaskErr != nil {
		return service.Task{}, f.CompleteTaskErr
	}
	t, err := f.Store.CompleteTask(listID, taskID, jsonvalue.ObjectOf("completed", completed))
	if err != nil {
		return service.Task{}, err
	}
	return toTask(t), nil
}

func toList(l store.List) service.List {
	tasks := make([]service.Task, len(l.Tasks))
	for i, t := range l.Tasks {
		tasks[i] = toTask(t)
	}
	return service.List{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Tasks:       tasks,
	}
}

func toTask(t store.Task) service.Task {
	return service.Task{ID: t.ID, Name: t.Name, Completed: t.Completed}
}
