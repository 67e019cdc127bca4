package openregister

import (
	"context"
	"fmt"
	"iter"
)

// Record is one row of a register: one value per declared field, keyed by
// the normalized field name, in declared order.
type Record struct {
	id     string
	names  []string
	values map[string]*FieldValue
}

// ID returns the record's key within its register.
func (r *Record) ID() string { return r.id }

// Names returns the normalized field names in declared order.
func (r *Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.names) }

// Get returns the value of the named field. Either the hyphenated or the
// normalized form of the name is accepted.
func (r *Record) Get(name string) (*FieldValue, bool) {
	v, ok := r.values[NormalizeName(name)]
	return v, ok
}

// All iterates fields in declared order.
func (r *Record) All() iter.Seq2[string, *FieldValue] {
	return func(yield func(string, *FieldValue) bool) {
		for _, name := range r.names {
			if !yield(name, r.values[name]) {
				return
			}
		}
	}
}

// Resolve resolves every field, returning the values that are present.
// Blank fields are omitted.
func (r *Record) Resolve(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(r.names))
	for name, v := range r.All() {
		value, ok, err := v.Value(ctx)
		if err != nil {
			return nil, fmt.Errorf("record %s field %s: %w", r.id, name, err)
		}
		if ok {
			out[name] = value
		}
	}
	return out, nil
}
