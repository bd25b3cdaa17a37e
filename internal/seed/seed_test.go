package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nztodo/internal/store"
	"nztodo/internal/validate"
)

const sample = `{
  "lists": [
    {"name": "groceries", "description": "weekly", "tasks": [
      {"name": "milk"},
      {"name": "eggs", "completed": true}
    ]},
    {"name": "chores"}
  ]
}`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	want := &File{Lists: []List{
		{Name: "groceries", Description: "weekly", Tasks: []Task{
			{Name: "milk"},
			{Name: "eggs", Completed: true},
		}},
		{Name: "chores"},
	}}
	assert.Equal(t, want, f)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
	}{
		{"missing lists", `{}`, ""},
		{"extra top-level key", `{"lists": [], "owner": "me"}`, ""},
		{"list without name", `{"lists": [{"description": "x"}]}`, "lists[0]"},
		{"name not a string", `{"lists": [{"name": 1}]}`, "lists[0].name"},
		{"completed not a boolean", `{"lists": [{"name": "a", "tasks": [{"name": "t", "completed": "yes"}]}]}`, "lists[0].tasks[0].completed"},
		{"unknown task key", `{"lists": [{"name": "a", "tasks": [{"name": "t", "due": "today"}]}]}`, "lists[0].tasks[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %T: %v", err, err)
			assert.Equal(t, tt.path, ve.Path)
		})
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"lists": [`))
	assert.ErrorContains(t, err, "invalid json")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Lists, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read seed file")
}

func TestApply(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	st := store.New()
	res, err := Apply(st, f)
	require.NoError(t, err)
	require.Len(t, res.ListIDs, 2)
	assert.Equal(t, 2, res.Tasks)

	l, err := st.GetList(res.ListIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "groceries", l.Name)
	assert.Equal(t, "weekly", l.Description)
	require.Len(t, l.Tasks, 2)
	assert.False(t, l.Tasks[0].Completed)
	assert.True(t, l.Tasks[1].Completed)

	l, err = st.GetList(res.ListIDs[1])
	require.NoError(t, err)
	assert.Empty(t, l.Tasks)
}

func TestPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"#":                 "",
		"/lists":            "lists",
		"/lists/0":          "lists[0]",
		"/lists/2/tasks/10": "lists[2].tasks[10]",
	}
	for in, want := range tests {
		assert.Equal(t, want, pointerToPath(in), in)
	}
}

func TestList_Object(t *testing.T) {
	obj := List{Name: "a", Tasks: []Task{{Name: "t"}}}.Object()
	assert.Equal(t, []string{"name", "description", "tasks"}, obj.Keys())

	norm, err := store.NormalizeList(obj)
	require.NoError(t, err)
	assert.Equal(t, 3, norm.Len())
	assert.False(t, validate.IsBadRequest(err))
}
