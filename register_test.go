package openregister

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-openregister/cache"
	"github.com/albertocavalcante/go-openregister/internal/registrytest"
)

func TestRegister_Fields(t *testing.T) {
	s := registrytest.NewServer(t)
	seedCountries(s)
	c := newTestCatalog(t, s)

	r, err := c.Register(context.Background(), "alpha", "country")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"country", "name", "official_name", "start_date",
		"entry_timestamp", "entry_number", "item_hash",
	}, r.FieldNames())
	assert.True(t, r.HasField("official-name"))
	assert.True(t, r.HasField("official_name"))
	assert.False(t, r.HasField("organisation"))
	assert.Equal(t, "<register: country>", r.String())
	assert.Equal(t, "https://country.alpha.openregister.org/", r.URL())
}

func TestRegister_RecordsMaterialization(t *testing.T) {
	s := registrytest.NewServer(t)
	seedCountries(s)
	c := newTestCatalog(t, s)
	ctx := context.Background()

	r, err := c.Register(ctx, "alpha", "country")
	require.NoError(t, err)

	records, err := r.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GB", "FR", "DE"}, records.IDs())

	gb, ok := records.Get("GB")
	require.True(t, ok)
	assert.Equal(t, "GB", gb.ID())
	assert.Equal(t, r.FieldNames(), gb.Names())
	assert.Equal(t, len(r.Fields()), gb.Len())

	official, ok := gb.Get("official-name")
	require.True(t, ok)
	assert.Equal(t, "The United Kingdom of Great Britain and Northern Ireland", official.Raw())

	sameField, ok := gb.Get("official_name")
	require.True(t, ok)
	assert.Same(t, official, sameField)

	entry, _ := gb.Get("entry_number")
	assert.Equal(t, "1", entry.Raw())
	assert.Equal(t, SystemField, entry.Field().Kind())
}

func TestRegister_MissingFieldsAreBlank(t *testing.T) {
	s := registrytest.NewServer(t)
	seedCountries(s)
	c := newTestCatalog(t, s)
	ctx := context.Background()

	r, err := c.Register(ctx, "alpha", "country")
	require.NoError(t, err)

	fr, err := r.Record(ctx, "FR")
	require.NoError(t, err)
	missing, ok := fr.Get("start-date")
	require.True(t, ok, "missing fields are present with an empty value")
	assert.Equal(t, "", missing.Raw())
	assert.True(t, missing.IsBlank())

	value, present, err := missing.Value(ctx)
	require.NoError(t, err)
	assert.False(t, present)
	assert.Empty(t, value)

	de, err := r.Record(ctx, "DE")
	require.NoError(t, err)
	blank, _ := de.Get("name")
	_, present, err = blank.Value(ctx)
	require.NoError(t, err)
	assert.False(t, present, "blank and missing resolve alike")
}

func TestRegister_UndeclaredFieldsAreDropped(t *testing.T) {
	s := registrytest.NewServer(t)
	s.AddRegister("alpha", "country", "country", "name")
	s.AddRecords("alpha", "country", `{"GB": {"country": "GB", "name": "United Kingdom", "citizen-names": "Briton"}}`)
	c := newTestCatalog(t, s)
	ctx := context.Background()

	r, err := c.Register(ctx, "alpha", "country")
	require.NoError(t, err)
	gb, err := r.Record(ctx, "GB")
	require.NoError(t, err)

	_, ok := gb.Get("citizen-names")
	assert.False(t, ok)
}

func TestRegister_RecordsFetchedOnce(t *testing.T) {
	s := registrytest.NewServer(t)
	seedCountries(s)
	c := newTestCatalog(t, s)
	ctx := context.Background()

	r, err := c.Register(ctx, "alpha", "country")
	require.NoError(t, err)

	first, err := r.Records(ctx)
	require.NoError(t, err)
	second, err := r.Records(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, s.Hits(registrytest.Host("country", "alpha"), "/records.json"))
}

func TestRegister_RecordsRetryAfterFailure(t *testing.T) {
	s := registrytest.NewServer(t)
	s.AddRegister("alpha", "country", "country", "name")
	c := newTestCatalog(t, s)
	ctx := context.Background()

	r, err := c.Register(ctx, "alpha", "country")
	require.NoError(t, err)

	_, err = r.Records(ctx)
	require.Error(t, err)

	s.AddRecords("alpha", "country", `{"GB": {"name": "United Kingdom"}}`)
	records, err := r.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, records.Len())
}

func TestRegister_RecordsRetryAfterMalformedBody(t *testing.T) {
	s := registrytest.NewServer(t)
	s.AddRegister("alpha", "country", "country", "name")
	s.AddRecords("alpha", "country", `{"GB": {"name": "United`)
	c := newTestCatalog(t, s, WithCache(cache.NewMemoryStore(time.Hour)))
	ctx := context.Background()

	r, err := c.Register(ctx, "alpha", "country")
	require.NoError(t, err)

	_, err = r.Records(ctx)
	require.Error(t, err)

	s.AddRecords("alpha", "country", `{"GB": {"name": "United Kingdom"}}`)
	records, err := r.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, records.Len())
	assert.Equal(t, 2, s.Hits(registrytest.Host("country", "alpha"), "/records.json"))
}

func TestRegister_RecordNotFound(t *testing.T) {
	s := registrytest.NewServer(t)
	seedCountries(s)
	c := newTestCatalog(t, s)
	ctx := context.Background()

	r, err := c.Register(ctx, "alpha", "country")
	require.NoError(t, err)

	_, err = r.Record(ctx, "XX")
	require.ErrorIs(t, err, ErrRecordNotFound)
	assert.Contains(t, err.Error(), "country:XX")
}

func TestRecords_AllStopsEarly(t *testing.T) {
	s := registrytest.NewServer(t)
	seedCountries(s)
	c := newTestCatalog(t, s)
	ctx := context.Background()

	r, err := c.Register(ctx, "alpha", "country")
	require.NoError(t, err)
	records, err := r.Records(ctx)
	require.NoError(t, err)

	var ids []string
	for id := range records.All() {
		ids = append(ids, id)
		if len(ids) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"GB", "FR"}, ids)
}

func TestRecord_Resolve(t *testing.T) {
	s := registrytest.NewServer(t)
	seedCountries(s)
	c := newTestCatalog(t, s)
	ctx := context.Background()

	r, err := c.Register(ctx, "alpha", "country")
	require.NoError(t, err)
	fr, err := r.Record(ctx, "FR")
	require.NoError(t, err)

	values, err := fr.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"country":      "FR",
		"name":         "France",
		"entry_number": "2",
	}, values)
}

func TestRegister_PageSize(t *testing.T) {
	s := registrytest.NewServer(t)
	seedCountries(s)
	c := newTestCatalog(t, s, WithPageSize(10))

	assert.Equal(t, "https://country.alpha.openregister.org/records.json?page-size=10",
		c.Client().RecordsURL("alpha", "country", c.cfg.pageSize))
}
