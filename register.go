package openregister

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/albertocavalcante/go-openregister/registry"
)

// Register is a named dataset on one phase of the platform.
//
// Its field list is fixed at construction. Records are fetched on the first
// successful call to Records and kept for the register's lifetime.
type Register struct {
	name    string
	phase   string
	meta    registry.RegisterMetadata
	fields  []*Field
	catalog *Catalog

	mu      sync.Mutex
	records *Records
}

// Name returns the register name.
func (r *Register) Name() string { return r.name }

// Phase returns the phase the register was loaded from.
func (r *Register) Phase() string { return r.phase }

// Metadata returns the register's metadata as served.
func (r *Register) Metadata() registry.RegisterMetadata { return r.meta }

// URL returns the register's home on the platform.
func (r *Register) URL() string {
	return fmt.Sprintf("https://%s.%s.%s/", r.name, r.phase, r.catalog.client.BaseDomain())
}

// Fields returns the declared fields followed by the system fields.
func (r *Register) Fields() []*Field {
	out := make([]*Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// FieldNames returns the normalized names records are keyed by, in order.
func (r *Register) FieldNames() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.AttrName()
	}
	return names
}

// HasField reports whether the register declares the named field.
// Either the hyphenated or the normalized form is accepted.
func (r *Register) HasField(name string) bool {
	attr := NormalizeName(name)
	for _, f := range r.fields {
		if f.AttrName() == attr {
			return true
		}
	}
	return false
}

// Records returns every record of the register, fetching a single page of
// records on first use.
func (r *Register) Records(ctx context.Context) (*Records, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.records != nil {
		return r.records, nil
	}

	raw, err := r.catalog.client.GetRecords(ctx, r.phase, r.name, r.catalog.cfg.pageSize)
	if err != nil {
		return nil, err
	}

	records := &Records{
		ids:  make([]string, 0, raw.Len()),
		byID: make(map[string]*Record, raw.Len()),
	}
	for _, id := range raw.Keys {
		records.ids = append(records.ids, id)
		records.byID[id] = r.materialize(id, raw.Values[id])
	}

	r.catalog.log.Debug("loaded records", "phase", r.phase, "register", r.name, "records", records.Len())
	r.records = records
	return records, nil
}

// Record returns the record with the given id.
func (r *Register) Record(ctx context.Context, id string) (*Record, error) {
	records, err := r.Records(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := records.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s:%s", ErrRecordNotFound, r.name, id)
	}
	return rec, nil
}

// materialize maps raw data onto the declared fields. Fields absent from the
// data get an empty value, so missing and blank look the same.
func (r *Register) materialize(id string, data registry.RawRecord) *Record {
	cleaned := make(map[string]string, len(data))
	for k, v := range data {
		cleaned[NormalizeName(k)] = string(v)
	}

	rec := &Record{
		id:     id,
		names:  make([]string, 0, len(r.fields)),
		values: make(map[string]*FieldValue, len(r.fields)),
	}
	for _, f := range r.fields {
		attr := f.AttrName()
		rec.names = append(rec.names, attr)
		rec.values[attr] = &FieldValue{raw: cleaned[attr], field: f, catalog: r.catalog}
	}
	return rec
}

func (r *Register) String() string {
	return fmt.Sprintf("<register: %s>", r.name)
}

// Records is a register's records in the order the platform served them.
type Records struct {
	ids  []string
	byID map[string]*Record
}

// Len returns the number of records.
func (s *Records) Len() int { return len(s.ids) }

// IDs returns the record ids in order.
func (s *Records) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Get returns the record with the given id.
func (s *Records) Get(id string) (*Record, bool) {
	rec, ok := s.byID[id]
	return rec, ok
}

// All iterates records in order.
func (s *Records) All() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		for _, id := range s.ids {
			if !yield(id, s.byID[id]) {
				return
			}
		}
	}
}
