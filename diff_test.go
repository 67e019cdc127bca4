package openregister

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-openregister/internal/registrytest"
)

func seedPhases(s *registrytest.Server) {
	s.AddRegister("alpha", "country", "country", "name")
	s.AddRecords("alpha", "country", `{
		"GB": {"country": "GB", "name": "United Kingdom", "entry-number": "1"},
		"FR": {"country": "FR", "name": "France"},
		"YU": {"country": "YU", "name": "Yugoslavia"}
	}`)
	s.AddRegister("beta", "country", "country", "name", "end-date")
	s.AddRecords("beta", "country", `{
		"GB": {"country": "GB", "name": "United Kingdom", "entry-number": "7"},
		"FR": {"country": "FR", "name": "French Republic"},
		"DE": {"country": "DE", "name": "Germany"},
		"CZ": {"country": "CZ", "name": "Czechia", "end-date": ""}
	}`)
}

func TestDiffPhases(t *testing.T) {
	s := registrytest.NewServer(t)
	seedPhases(s)
	c := newTestCatalog(t, s)

	diff, err := c.DiffPhases(context.Background(), "country", "alpha", "beta")
	require.NoError(t, err)

	assert.Equal(t, []string{"CZ", "DE"}, diff.Added)
	assert.Equal(t, []string{"YU"}, diff.Removed)
	assert.Equal(t, []RecordChange{{ID: "FR", Fields: []string{"name"}}}, diff.Changed)
	assert.Equal(t, 4, diff.TotalChanges())
	assert.False(t, diff.IsEmpty())
}

func TestDiffRecords_NilIsEmpty(t *testing.T) {
	diff := DiffRecords(nil, nil)
	assert.True(t, diff.IsEmpty())
	assert.Equal(t, 0, diff.TotalChanges())
}

func TestDiffRecords_Identical(t *testing.T) {
	s := registrytest.NewServer(t)
	seedPhases(s)
	c := newTestCatalog(t, s)
	ctx := context.Background()

	r, err := c.Register(ctx, "alpha", "country")
	require.NoError(t, err)
	records, err := r.Records(ctx)
	require.NoError(t, err)

	assert.True(t, DiffRecords(records, records).IsEmpty())

	fromNothing := DiffRecords(nil, records)
	assert.Equal(t, []string{"FR", "GB", "YU"}, fromNothing.Added)
}

func TestDiffPhases_MissingRegister(t *testing.T) {
	s := registrytest.NewServer(t)
	seedPhases(s)
	c := newTestCatalog(t, s)

	_, err := c.DiffPhases(context.Background(), "country", "alpha", "discovery")
	require.Error(t, err)
}
