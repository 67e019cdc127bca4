package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Metadata types served by the metadata registers.
const (
	MetaTypeRegister = "register"
	MetaTypeField    = "field"
)

// Datatypes with special meaning to the client.
const (
	// DatatypeCurie marks a field whose values reference another register's
	// record, written as "register-name:record-id".
	DatatypeCurie = "curie"
)

// CardinalityMany marks a field holding a list of values.
const CardinalityMany = "n"

// Value is a raw field value as a string.
//
// The platform mostly serves strings, but older and newer API versions also
// emit numbers, booleans and lists. Scalars keep their JSON text, lists are
// joined with ";" and null becomes the empty string.
type Value string

// UnmarshalJSON decodes any JSON value into its string form.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	case data[0] == '[':
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = string(item)
		}
		*v = Value(strings.Join(parts, ";"))
	case data[0] == '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = Value(buf.String())
	default:
		*v = Value(data)
	}
	return nil
}

// String returns the value as a plain string.
func (v Value) String() string {
	return string(v)
}

// RawRecord maps a record's field names, as served, to their raw values.
type RawRecord map[string]Value

// RecordSet is the decoded body of a register's records.json.
type RecordSet = OrderedMap[RawRecord]

// RegisterIndex is the decoded body of the register register's records.json:
// every register on a phase keyed by name.
type RegisterIndex = OrderedMap[RegisterMetadata]

// OrderedMap is a JSON object decoded with its key order preserved.
type OrderedMap[T any] struct {
	// Keys lists object keys in document order, without duplicates.
	Keys []string

	// Values maps each key to its decoded value. A repeated key keeps the
	// last value, matching encoding/json.
	Values map[string]T
}

// UnmarshalJSON decodes a JSON object, recording key order.
func (m *OrderedMap[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	m.Keys = nil
	m.Values = make(map[string]T)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		var value T
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
		if _, seen := m.Values[key]; !seen {
			m.Keys = append(m.Keys, key)
		}
		m.Values[key] = value
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Len returns the number of entries.
func (m *OrderedMap[T]) Len() int {
	return len(m.Keys)
}

// Get returns the value stored under key.
func (m *OrderedMap[T]) Get(key string) (T, bool) {
	v, ok := m.Values[key]
	return v, ok
}

// RegisterMetadata describes a register, as served by the register register.
type RegisterMetadata struct {
	// Register is the register's name.
	Register string `json:"register,omitempty"`

	// Text is a human-readable description.
	Text string `json:"text,omitempty"`

	// Phase is the phase the register was declared in.
	Phase string `json:"phase,omitempty"`

	// Registry names the custodian organisation, often as a curie.
	Registry Value `json:"registry,omitempty"`

	// Fields lists the declared field names in order.
	// Required: a register without fields cannot be materialized.
	Fields []string `json:"fields"`

	// Copyright is the register's licence statement.
	Copyright string `json:"copyright,omitempty"`

	// Entry bookkeeping attached by the platform.
	EntryNumber    Value `json:"entry-number,omitempty"`
	EntryTimestamp Value `json:"entry-timestamp,omitempty"`
	ItemHash       Value `json:"item-hash,omitempty"`
}

// HasField reports whether the register declares the named field.
func (m *RegisterMetadata) HasField(name string) bool {
	return slices.Contains(m.Fields, name)
}

// FieldMetadata describes a field, as served by the field register.
type FieldMetadata struct {
	// Field is the field's name.
	Field string `json:"field,omitempty"`

	// Datatype is the value type, e.g. "string", "datetime" or "curie".
	Datatype string `json:"datatype,omitempty"`

	// Phase is the phase the field was declared in.
	Phase string `json:"phase,omitempty"`

	// Register names the register whose records this field's values key
	// into, when the field is a foreign key by name.
	Register string `json:"register,omitempty"`

	// Cardinality is "1" for single values and "n" for lists.
	Cardinality string `json:"cardinality,omitempty"`

	// Text is a human-readable description.
	Text string `json:"text,omitempty"`

	EntryNumber    Value `json:"entry-number,omitempty"`
	EntryTimestamp Value `json:"entry-timestamp,omitempty"`
	ItemHash       Value `json:"item-hash,omitempty"`
}

// IsCurie reports whether values of this field are cross-register references.
func (m *FieldMetadata) IsCurie() bool {
	return m != nil && m.Datatype == DatatypeCurie
}
