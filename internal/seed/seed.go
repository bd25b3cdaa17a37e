// Package seed loads lists into a store at startup, either from a JSON seed
// file or from records produced by an importer.
//
// A seed file looks like:
//
//	{"lists": [{"name": "groceries", "description": "", "tasks": [{"name": "milk", "completed": false}]}]}
//
// Files are checked against an embedded JSON Schema before anything is
// created. Each list then goes through Store.CreateList, so the store's own
// validation still applies and each list is created all-or-nothing.
package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"nztodo/internal/jsonvalue"
	"nztodo/internal/store"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "seed.schema.json"

// File is the content of a seed file.
type File struct {
	Lists []List `json:"lists"`
}

// List is one list to create.
type List struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tasks       []Task `json:"tasks,omitempty"`
}

// Task is one task of a seeded list.
type Task struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed,omitempty"`
}

// ValidationError is a schema violation at a location in the seed document.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Result reports what Apply created.
type Result struct {
	ListIDs []string
	Tasks   int
}

// Load reads and validates the seed file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return f, nil
}

// Parse validates data against the seed schema and decodes it.
func Parse(data []byte) (*File, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, schemaErrors(err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &f, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("load seed schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile seed schema: %w", err)
	}
	return schema, nil
}

// schemaErrors flattens a jsonschema error tree into its leaf causes.
func schemaErrors(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errors.Join(errs...)
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: pointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// pointerToPath turns "/lists/0/tasks/1" into "lists[0].tasks[1]".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for i, part := range strings.Split(ptr, "/") {
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Object renders l as the request data Store.CreateList expects.
func (l List) Object() *jsonvalue.Object {
	tasks := make([]any, len(l.Tasks))
	for i, t := range l.Tasks {
		tasks[i] = jsonvalue.ObjectOf("name", t.Name, "completed", t.Completed)
	}
	return jsonvalue.ObjectOf(
		"name", l.Name,
		"description", l.Description,
		"tasks", tasks,
	)
}

// Apply creates every list of f in st, in order. It stops at the first list
// the store rejects; lists created before it are kept.
func Apply(st *store.Store, f *File) (Result, error) {
	var res Result
	for i, l := range f.Lists {
		id, taskIDs, err := st.CreateList(l.Object())
		if err != nil {
			return res, fmt.Errorf("list %d (%q): %w", i, l.Name, err)
		}
		res.ListIDs = append(res.ListIDs, id)
		res.Tasks += len(taskIDs)
	}
	return res, nil
}
