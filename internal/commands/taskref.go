package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"github.com/google/uuid"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	ID  string // task id, empty if referenced by number
	Num int    // 1-based position in the list, 0 if referenced by id
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference.
//
// Parsing rules:
// 1. If ref is all digits → 1-based position in the list (must be >= 1)
// 2. If ref is a canonical uuid → task id
// 3. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(ref string) (TaskRef, error) {
	if ref == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil || num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %s", ref)
		}
		return TaskRef{Num: num}, nil
	}

	if isUUID(ref) {
		return TaskRef{ID: ref}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isUUID reports whether s is a uuid in the 8-4-4-4-12 form.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
