package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nztodo/internal/service"
)

var (
	// ErrListNotFound is returned when no list has the given name.
	ErrListNotFound = errors.New("list not found")

	// ErrAmbiguousList is returned when several lists share the given name.
	ErrAmbiguousList = errors.New("ambiguous list name")

	// ErrTaskOutOfRange is returned for a task number past the end of a list.
	ErrTaskOutOfRange = errors.New("task number out of range")
)

// ResolveList finds a list by id or by name. A uuid is fetched directly;
// anything else is matched against list names (case-insensitive, trimmed).
func ResolveList(ctx context.Context, svc service.Service, ref string) (service.List, error) {
	ref = strings.TrimSpace(ref)
	if isUUID(ref) {
		return svc.GetList(ctx, ref)
	}

	lists, err := svc.ListLists(ctx, service.AllLists)
	if err != nil {
		return service.List{}, err
	}

	nameLower := strings.ToLower(ref)
	var matches []service.List
	for _, l := range lists {
		if strings.ToLower(strings.TrimSpace(l.Name)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return service.List{}, fmt.Errorf("%w: %s", ErrListNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return service.List{}, fmt.Errorf("%w: %s", ErrAmbiguousList, ref)
	}
}

// ResolveTask finds the task ref points at in list. References by number
// count every task of the list, completed or not, from 1.
func ResolveTask(list service.List, ref TaskRef) (service.Task, error) {
	if ref.ID != "" {
		id := strings.ToLower(ref.ID)
		for _, t := range list.Tasks {
			if t.ID == id {
				return t, nil
			}
		}
		// Let the server decide; the list snapshot may be stale.
		return service.Task{ID: ref.ID}, nil
	}

	if ref.Num < 1 || ref.Num > len(list.Tasks) {
		return service.Task{}, fmt.Errorf("%w: %d", ErrTaskOutOfRange, ref.Num)
	}
	return list.Tasks[ref.Num-1], nil
}

// isLookupError reports whether err came from resolving a reference locally.
func isLookupError(err error) bool {
	return errors.Is(err, ErrListNotFound) ||
		errors.Is(err, ErrAmbiguousList) ||
		errors.Is(err, ErrTaskOutOfRange)
}
