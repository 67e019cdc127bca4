package openregister

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// nameField is the field a curie resolves to on its target record.
const nameField = "name"

// FieldValue pairs a record's raw value with the field it belongs to.
// Resolution happens on demand in Value.
type FieldValue struct {
	raw     string
	field   *Field
	catalog *Catalog
}

// Raw returns the value as served, or "" if the field was missing or blank.
func (v *FieldValue) Raw() string { return v.raw }

// Field returns the owning field.
func (v *FieldValue) Field() *Field { return v.field }

// IsBlank reports whether the field was missing or empty.
func (v *FieldValue) IsBlank() bool { return v.raw == "" }

// Value resolves the value. The bool is false when the value is blank.
//
// For curie fields the raw "register:id" is followed to the target record in
// the same phase and that record's name is resolved in turn, so chains of
// curies resolve depth-first. A chain that revisits a curie fails with
// ErrCurieCycle; one longer than the configured depth fails with
// ErrResolveDepth. Other values are returned unchanged.
func (v *FieldValue) Value(ctx context.Context) (string, bool, error) {
	return v.resolve(ctx, nil)
}

func (v *FieldValue) resolve(ctx context.Context, chain []string) (string, bool, error) {
	if v.raw == "" {
		return "", false, nil
	}
	if !v.field.IsCurie() {
		return v.raw, true, nil
	}

	curie, err := ParseCurie(v.raw)
	if err != nil {
		return "", false, err
	}

	link := v.field.phase + "/" + curie.String()
	if slices.Contains(chain, link) {
		return "", false, fmt.Errorf("%w: %s", ErrCurieCycle, strings.Join(append(chain, link), " -> "))
	}
	if len(chain) >= v.catalog.cfg.maxResolveDepth {
		return "", false, fmt.Errorf("%w: more than %d links from %s", ErrResolveDepth, v.catalog.cfg.maxResolveDepth, chain[0])
	}

	target, err := v.catalog.Register(ctx, v.field.phase, curie.Register)
	if err != nil {
		return "", false, fmt.Errorf("resolving %s: %w", curie, err)
	}
	rec, err := target.Record(ctx, curie.ID)
	if err != nil {
		return "", false, err
	}
	name, ok := rec.Get(nameField)
	if !ok {
		return "", false, fmt.Errorf("%w: %s has no %s field", ErrFieldNotFound, target.Name(), nameField)
	}

	return name.resolve(ctx, append(chain, link))
}

func (v *FieldValue) String() string {
	raw := v.raw
	if raw == "" {
		raw = "[Blank]"
	}
	datatype := v.field.Datatype()
	if datatype == "" {
		datatype = "None"
	}
	return fmt.Sprintf("<FieldValue: %s (%s)>", raw, datatype)
}
