// Package validate checks semi-structured request data against field schemas.
//
// A check runs in a fixed order, and the first failure wins:
//
//  1. the data must be an object
//  2. no keys outside the schema ("Unexpected key(s): ...")
//  3. no schema keys absent from the data ("Missing required key(s): ...")
//  4. each value, in the data's key order, must match its field type
//
// Checks never modify their input. Data returns a normalized copy in which
// UUID values are lowercased.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"nztodo/internal/jsonvalue"
)

// Type is the expected type of a field value.
type Type uint8

const (
	String Type = iota + 1
	Boolean
	Array
	// Uint32String is a string holding an unsigned integer literal below 2^32.
	Uint32String
	// UUID is a string in 8-4-4-4-12 hex layout, any case.
	UUID
)

// String returns the type's description as used in error messages.
func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case Array:
		return "array"
	case Uint32String:
		return "uint32 string"
	case UUID:
		return "uuid"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Field names one expected key and its type.
type Field struct {
	Name string
	Type Type
}

// Schema is an ordered set of required fields.
type Schema []Field

func (s Schema) lookup(name string) (Type, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Type, true
		}
	}
	return 0, false
}

var (
	uuidPattern   = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	uint32Pattern = regexp.MustCompile(`^([0-9]+|0x[0-9a-f]+|0[0-7]+|0b[01]+)$`)
	octalPattern  = regexp.MustCompile(`^0[0-7]+$`)
)

// Data validates data against schema and returns a normalized copy.
func Data(data any, schema Schema) (*jsonvalue.Object, error) {
	obj, err := Form(data, schema)
	if err != nil {
		return nil, err
	}

	out := obj.Clone()
	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		typ, _ := schema.lookup(key)
		nv, err := Value(v, key, typ)
		if err != nil {
			return nil, err
		}
		out.Set(key, nv)
	}
	return out, nil
}

// Form checks that data is an object holding exactly the schema's keys.
func Form(data any, schema Schema) (*jsonvalue.Object, error) {
	obj, ok := data.(*jsonvalue.Object)
	if !ok || obj == nil {
		return nil, typeError("data", "hash")
	}

	var unexpected []string
	for _, key := range obj.Keys() {
		if _, ok := schema.lookup(key); !ok {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		return nil, NewBadRequest(append([]string{"Unexpected key(s):"}, unexpected...)...)
	}

	var missing []string
	for _, f := range schema {
		if !obj.Has(f.Name) {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, NewBadRequest(append([]string{"Missing required key(s):"}, missing...)...)
	}

	return obj, nil
}

// Value checks a single value for key against typ and returns it normalized.
func Value(v any, key string, typ Type) (any, error) {
	switch typ {
	case String:
		if _, ok := v.(string); ok {
			return v, nil
		}
	case Boolean:
		if _, ok := v.(bool); ok {
			return v, nil
		}
	case Array:
		if _, ok := v.([]any); ok {
			return v, nil
		}
	case Uint32String:
		if s, ok := v.(string); ok {
			if _, ok := ParseUint32String(s); ok {
				return v, nil
			}
		}
	case UUID:
		if s, ok := v.(string); ok && uuidPattern.MatchString(s) {
			return strings.ToLower(s), nil
		}
	default:
		panic(fmt.Sprintf("validate: unhandled type %v for %q", typ, key))
	}
	return nil, typeError(key, typ.String())
}

// ParseUint32String decodes a decimal, 0x-hex, 0-octal or 0b-binary literal.
// It reports false for any other syntax or for values of 2^32 and above.
func ParseUint32String(s string) (uint32, bool) {
	if !uint32Pattern.MatchString(s) {
		return 0, false
	}

	digits, base := s, 10
	switch {
	case strings.HasPrefix(s, "0x"):
		digits, base = s[2:], 16
	case strings.HasPrefix(s, "0b"):
		digits, base = s[2:], 2
	case octalPattern.MatchString(s):
		digits, base = s[1:], 8
	}

	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// Fetch validates id as a UUID and returns the matching entry of container.
// The label names the entity in messages: "Value for list id must be a
// uuid." and "List not found.".
func Fetch[V any](container map[string]V, id any, label string) (V, error) {
	var zero V

	norm, err := Value(id, cases.Lower(language.Und).String(label)+" id", UUID)
	if err != nil {
		return zero, err
	}

	v, ok := container[norm.(string)]
	if !ok {
		return zero, NewNotFound(label, "not found")
	}
	return v, nil
}

func typeError(key, description string) *Error {
	return NewBadRequest("Value for", key, "must be a", description)
}
