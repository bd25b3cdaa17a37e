package commands

import (
	"context"
	"errors"
	"testing"

	"nztodo/internal/service"
	"nztodo/internal/testutil"
)

const sampleID = "9b2c6f0e-4a1d-4c3e-8f5a-1e2d3c4b5a69"

func TestParseTaskRef_Number(t *testing.T) {
	ref, err := ParseTaskRef("5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Num != 5 || ref.ID != "" {
		t.Errorf("unexpected ref: %#v", ref)
	}
}

func TestParseTaskRef_UUID(t *testing.T) {
	ref, err := ParseTaskRef(sampleID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != sampleID || ref.Num != 0 {
		t.Errorf("unexpected ref: %#v", ref)
	}
}

func TestParseTaskRef_Zero_Error(t *testing.T) {
	_, err := ParseTaskRef("0")
	if err == nil {
		t.Fatal("expected error for task number 0")
	}
	expectedMsg := "task number out of range: 0"
	if err.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, err.Error())
	}
}

func TestParseTaskRef_Empty_Error(t *testing.T) {
	_, err := ParseTaskRef("")
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestParseTaskRef_Invalid_Error(t *testing.T) {
	for _, in := range []string{"abc", "a1", "-1", "1.5", "9b2c6f0e4a1d4c3e8f5a1e2d3c4b5a69", "{" + sampleID + "}"} {
		_, err := ParseTaskRef(in)
		if err == nil {
			t.Errorf("%q: expected error", in)
			continue
		}
		expectedMsg := "invalid task reference: " + in
		if err.Error() != expectedMsg {
			t.Errorf("expected %q, got %q", expectedMsg, err.Error())
		}
	}
}

func TestParseTaskRef_NonASCIIDigits_Error(t *testing.T) {
	if _, err := ParseTaskRef("١٢"); err == nil {
		t.Fatal("expected error for non-ASCII digits")
	}
}

func TestResolveTask(t *testing.T) {
	list := service.List{
		ID: "l",
		Tasks: []service.Task{
			{ID: "t1", Name: "first"},
			{ID: "t2", Name: "second", Completed: true},
		},
	}

	task, err := ResolveTask(list, TaskRef{Num: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "t2" {
		t.Errorf("expected t2, got %q", task.ID)
	}

	_, err = ResolveTask(list, TaskRef{Num: 3})
	if !errors.Is(err, ErrTaskOutOfRange) {
		t.Errorf("expected ErrTaskOutOfRange, got %v", err)
	}

	// Unknown ids are passed through for the server to judge.
	task, err = ResolveTask(list, TaskRef{ID: sampleID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != sampleID {
		t.Errorf("expected %q, got %q", sampleID, task.ID)
	}
}

func TestResolveList(t *testing.T) {
	svc := testutil.NewFakeService()
	workID, _ := svc.AddList("Work")
	svc.AddList("Home")
	svc.AddList("home ")
	ctx := context.Background()

	list, err := ResolveList(ctx, svc, "  WORK ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.ID != workID {
		t.Errorf("expected %q, got %q", workID, list.ID)
	}

	list, err = ResolveList(ctx, svc, workID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Name != "Work" {
		t.Errorf("expected Work, got %q", list.Name)
	}

	if _, err := ResolveList(ctx, svc, "home"); !errors.Is(err, ErrAmbiguousList) {
		t.Errorf("expected ErrAmbiguousList, got %v", err)
	}
	if _, err := ResolveList(ctx, svc, "garden"); !errors.Is(err, ErrListNotFound) {
		t.Errorf("expected ErrListNotFound, got %v", err)
	}
	if _, err := ResolveList(ctx, svc, sampleID); !service.IsRequestError(err) {
		t.Errorf("expected a request error for unknown id, got %v", err)
	}
}
