package openregister

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-openregister/registry"
)

// SystemFields are appended to every register's declared fields, in order.
// The platform attaches them to each record.
var SystemFields = []string{
	"entry_timestamp",
	"entry_number",
	"item_hash",
}

// FieldKind distinguishes fields backed by the field register from fields the
// platform adds to every record.
type FieldKind int

const (
	// RemoteField has metadata fetched from the field register.
	RemoteField FieldKind = iota

	// SystemField is synthetic and carries empty metadata.
	SystemField
)

func (k FieldKind) String() string {
	switch k {
	case RemoteField:
		return "remote"
	case SystemField:
		return "system"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Field is a named, typed column shared by the registers that declare it.
type Field struct {
	name  string
	phase string
	kind  FieldKind
	meta  registry.FieldMetadata
}

func newField(name, phase string, kind FieldKind, meta registry.FieldMetadata) *Field {
	return &Field{name: name, phase: phase, kind: kind, meta: meta}
}

// Name returns the field name as declared, e.g. "start-date".
func (f *Field) Name() string { return f.name }

// Phase returns the phase the field was loaded from.
func (f *Field) Phase() string { return f.phase }

// Kind reports whether the field is remote or system.
func (f *Field) Kind() FieldKind { return f.kind }

// Metadata returns the field's metadata. System fields have none.
func (f *Field) Metadata() registry.FieldMetadata { return f.meta }

// Datatype returns the declared datatype, or "" if none.
func (f *Field) Datatype() string { return f.meta.Datatype }

// IsCurie reports whether the field's values reference other registers.
func (f *Field) IsCurie() bool { return f.meta.IsCurie() }

// AttrName returns the name records expose the field under.
func (f *Field) AttrName() string { return NormalizeName(f.name) }

func (f *Field) String() string {
	return fmt.Sprintf("<field: %s>", f.name)
}

// NormalizeName converts a field name to the form records are keyed by,
// replacing hyphens with underscores.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
