// Package tabular reads and writes the flat, header-first datasets each care
// line stage is kept in, and resolves rows by key.
package tabular

import (
	"bytes"
	"encoding/json"
)

// Field is one named value of a Record.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered field list. Insertion order becomes the header order
// when a Record creates a dataset.
type Record struct {
	fields []Field
}

// NewRecord builds a Record from name/value pairs.
func NewRecord(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set replaces the value of name, or appends it when unseen.
func (r *Record) Set(name, value string) {
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields[i].Value = value
			return
		}
	}
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Get returns the value stored under name.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the value under name, or "" when the field is missing.
func (r Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Name
	}
	return keys
}

func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r Record) Len() int { return len(r.fields) }

// IsBlank reports whether every field is empty.
func (r Record) IsBlank() bool {
	for _, f := range r.fields {
		if f.Value != "" {
			return false
		}
	}
	return true
}

// Map copies the record into a plain map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON emits an object with keys in record order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
