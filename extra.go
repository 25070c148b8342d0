// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Extra holds object members a record does not declare, in the order they
// arrived. Values are kept as received and written back verbatim. The zero
// value is an empty bag; copies of a non-empty bag share its members.
type Extra struct {
	members *orderedmap.OrderedMap[string, json.RawMessage]
}

// Len returns the number of members.
func (x Extra) Len() int {
	if x.members == nil {
		return 0
	}
	return x.members.Len()
}

// Get returns the raw value of member name.
func (x Extra) Get(name string) (json.RawMessage, bool) {
	if x.members == nil {
		return nil, false
	}
	return x.members.Get(name)
}

// Set adds or replaces a member. A new member goes last.
func (x *Extra) Set(name string, value json.RawMessage) {
	if x.members == nil {
		x.members = orderedmap.New[string, json.RawMessage]()
	}
	x.members.Set(name, value)
}

// Delete removes member name.
func (x *Extra) Delete(name string) {
	if x.members != nil {
		x.members.Delete(name)
	}
}

// Keys returns the member names in order.
func (x Extra) Keys() []string {
	keys := make([]string, 0, x.Len())
	if x.members == nil {
		return keys
	}
	for pair := x.members.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (x Extra) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range x.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		v, _ := x.Get(k)
		b.WriteString(k)
		b.WriteByte('=')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.String()
}

// objectWriter emits a JSON object with members in call order.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) raw(name string, value []byte) {
	if w.err != nil {
		return
	}
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	key, err := json.Marshal(name)
	if err != nil {
		w.err = err
		return
	}
	w.buf.Write(key)
	w.buf.WriteByte(':')
	w.buf.Write(value)
	w.n++
}

// field writes name unless present is false.
func (w *objectWriter) field(name string, present bool, value interface{}) {
	if !present || w.err != nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("encode %s: %w", name, err)
		return
	}
	w.raw(name, data)
}

// extra appends the unknown members after the named ones, skipping any
// that would shadow a named field.
func (w *objectWriter) extra(x Extra, named ...string) {
	for _, k := range x.Keys() {
		if contains(named, k) {
			continue
		}
		v, _ := x.Get(k)
		if !json.Valid(v) {
			w.err = fmt.Errorf("extra member %q is not valid JSON", k)
			return
		}
		w.raw(k, v)
	}
}

func (w *objectWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

// objectReader consumes named members from a decoded object; whatever is
// left over becomes the record's Extra.
type objectReader struct {
	record  string
	members *orderedmap.OrderedMap[string, json.RawMessage]
}

func readObject(record string, data []byte) (*objectReader, error) {
	members, err := decodeMembers(data)
	if err != nil {
		return nil, &SchemaViolation{Record: record, Err: err}
	}
	return &objectReader{record: record, members: members}, nil
}

// decodeMembers reads a JSON object, keeping its member order.
func decodeMembers(data []byte) (*orderedmap.OrderedMap[string, json.RawMessage], error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object, got %s", tokenKind(tok))
	}

	members := orderedmap.New[string, json.RawMessage]()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		members.Set(name, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

func tokenKind(tok json.Token) string {
	switch t := tok.(type) {
	case nil:
		return "null"
	case json.Delim:
		if t == '[' {
			return "an array"
		}
		return t.String()
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}

// present reports whether member name is set to a non-null value. Call it
// before field, which consumes the member.
func (r *objectReader) present(name string) bool {
	raw, ok := r.members.Get(name)
	return ok && !isNull(raw)
}

// field decodes member name into dst and removes it from the pending set.
// A missing or null member leaves dst untouched.
func (r *objectReader) field(name string, dst interface{}) error {
	raw, ok := r.members.Get(name)
	if !ok {
		return nil
	}
	r.members.Delete(name)
	if isNull(raw) {
		return nil
	}
	if err := rejectNulls(raw, dst); err != nil {
		return &SchemaViolation{Record: r.record, Field: name, Err: err}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var sv *SchemaViolation
		if errors.As(err, &sv) {
			return sv
		}
		return &SchemaViolation{Record: r.record, Field: name, Err: err}
	}
	return nil
}

func (r *objectReader) extra() Extra {
	if r.members.Len() == 0 {
		return Extra{}
	}
	return Extra{members: r.members}
}

// rejectNulls fails when raw is a list or map holding null where dst has no
// room for it. encoding/json would otherwise leave a zero value in place.
func rejectNulls(raw json.RawMessage, dst interface{}) error {
	t := reflect.TypeOf(dst)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || (t.Kind() != reflect.Slice && t.Kind() != reflect.Map) || nullable(t.Elem()) {
		return nil
	}

	switch t.Kind() {
	case reflect.Slice:
		var elems []json.RawMessage
		if json.Unmarshal(raw, &elems) != nil {
			return nil
		}
		for i, e := range elems {
			if isNull(e) {
				return fmt.Errorf("null element at index %d", i)
			}
		}
	case reflect.Map:
		var members map[string]json.RawMessage
		if json.Unmarshal(raw, &members) != nil {
			return nil
		}
		keys := make([]string, 0, len(members))
		for k, v := range members {
			if isNull(v) {
				keys = append(keys, k)
			}
		}
		if len(keys) > 0 {
			sort.Strings(keys)
			return fmt.Errorf("null value for key %q", keys[0])
		}
	}
	return nil
}

func nullable(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr || t.Kind() == reflect.Interface
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// describe renders a record for debugging as Name [a=1, b=2, additionalProperties={...}].
func describe(record string, pairs ...interface{}) string {
	var b strings.Builder
	b.WriteString(record)
	b.WriteString(" [")
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v=%s", pairs[i], show(pairs[i+1]))
	}
	b.WriteByte(']')
	return b.String()
}

// show dereferences optional scalars so the debug output reads like values.
func show(v interface{}) string {
	switch t := v.(type) {
	case *string:
		if t == nil {
			return "<nil>"
		}
		return *t
	case *int64:
		if t == nil {
			return "<nil>"
		}
		return fmt.Sprint(*t)
	case *ObjectReference:
		if t == nil {
			return "<nil>"
		}
		return string(*t)
	case Extra:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
