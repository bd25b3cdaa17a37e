// Package jsonvalue decodes JSON documents into generic values whose objects
// keep their key order.
//
// Decoded values use these Go types:
//
//	object  -> *Object
//	array   -> []any
//	string  -> string
//	number  -> json.Number
//	boolean -> bool
//	null    -> nil
//
// Key order matters to callers that report keys back to the user (for
// example "Unexpected key(s): z y."), which a plain map[string]any cannot do.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Object is a JSON object that remembers insertion order.
// Setting an existing key replaces its value but keeps its position,
// matching how duplicate keys resolve in most JSON parsers.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// ObjectOf builds an object from alternating key/value pairs.
// It panics on an odd pair count or a non-string key.
func ObjectOf(pairs ...any) *Object {
	if len(pairs)%2 != 0 {
		panic("jsonvalue: ObjectOf needs key/value pairs")
	}
	o := NewObject()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("jsonvalue: key %v is %T, not string", pairs[i], pairs[i]))
		}
		o.Set(key, pairs[i+1])
	}
	return o
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Set stores v under key.
func (o *Object) Set(key string, v any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Clone returns a shallow copy. Nested objects and arrays are shared.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]any, len(o.values)),
	}
	copy(c.keys, o.keys)
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

// String returns the value under key if it is a JSON string.
func (o *Object) String(key string) (string, bool) {
	s, ok := o.values[key].(string)
	return s, ok
}

// Bool returns the value under key if it is a JSON boolean.
func (o *Object) Bool(key string) (bool, bool) {
	b, ok := o.values[key].(bool)
	return b, ok
}

// Array returns the value under key if it is a JSON array.
func (o *Object) Array(key string) ([]any, bool) {
	a, ok := o.values[key].([]any)
	return a, ok
}

// MarshalJSON encodes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("jsonvalue: expected object, got %T", v)
	}
	*o = *obj
	return nil
}

// ErrTrailingData is returned when a document holds more than one value.
var ErrTrailingData = errors.New("jsonvalue: trailing data after value")

// Parse decodes a single JSON value from data.
func Parse(data []byte) (any, error) {
	return Decode(bytes.NewReader(data))
}

// MustParse is like Parse but panics on error. Intended for fixtures.
func MustParse(s string) any {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("jsonvalue: MustParse(%q): %v", s, err))
	}
	return v
}

// Decode reads exactly one JSON value from r.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("jsonvalue: object key %v is not a string", kt)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("jsonvalue: unexpected delimiter %q", delim)
	}
}

// FromQuery decodes a raw URL query string into an object of string values.
// Pairs are separated by '&' or ';'. Keys keep the order of their first
// appearance; a repeated key keeps the last value.
func FromQuery(rawQuery string) (*Object, error) {
	obj := NewObject()
	for _, pair := range strings.FieldsFunc(rawQuery, isQuerySeparator) {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("decode query key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("decode query value for %q: %w", key, err)
		}
		obj.Set(key, value)
	}
	return obj, nil
}

func isQuerySeparator(r rune) bool {
	return r == '&' || r == ';'
}
