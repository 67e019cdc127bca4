package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"string", `"United Kingdom"`, "United Kingdom"},
		{"empty string", `""`, ""},
		{"null", `null`, ""},
		{"integer", `42`, "42"},
		{"boolean", `true`, "true"},
		{"list", `["a","b","c"]`, "a;b;c"},
		{"empty list", `[]`, ""},
		{"object", `{ "a" : 1 }`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestOrderedMap_DuplicateKeys(t *testing.T) {
	var m OrderedMap[RawRecord]
	require.NoError(t, json.Unmarshal([]byte(`{"a":{"x":"1"},"b":{},"a":{"x":"2"}}`), &m))

	assert.Equal(t, []string{"a", "b"}, m.Keys)
	assert.Equal(t, 2, m.Len())
	a, _ := m.Get("a")
	assert.Equal(t, Value("2"), a["x"])
}

func TestOrderedMap_RejectsNonObject(t *testing.T) {
	var m OrderedMap[RawRecord]
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &m))
}

func TestOrderedMap_Empty(t *testing.T) {
	var m OrderedMap[RegisterMetadata]
	require.NoError(t, json.Unmarshal([]byte(`{}`), &m))
	assert.Equal(t, 0, m.Len())
	_, ok := m.Get("anything")
	assert.False(t, ok)
}

func TestRegisterMetadata_NumericEntryNumber(t *testing.T) {
	var m RegisterMetadata
	require.NoError(t, json.Unmarshal([]byte(`{"register":"country","fields":["country"],"entry-number":7}`), &m))
	assert.Equal(t, Value("7"), m.EntryNumber)
}

func TestFieldMetadata_IsCurie(t *testing.T) {
	var nilMeta *FieldMetadata
	assert.False(t, nilMeta.IsCurie())
	assert.False(t, (&FieldMetadata{Datatype: "string"}).IsCurie())
	assert.True(t, (&FieldMetadata{Datatype: DatatypeCurie}).IsCurie())
}
