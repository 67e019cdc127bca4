package openregister

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-openregister/internal/registrytest"
)

// newTestCatalog returns a catalog wired to the fake platform.
func newTestCatalog(t *testing.T, s *registrytest.Server, opts ...Option) *Catalog {
	t.Helper()

	c, err := NewCatalog(append([]Option{WithHTTPClient(s.HTTPClient())}, opts...)...)
	require.NoError(t, err)
	return c
}

// seedCountries declares a small country register on alpha.
func seedCountries(s *registrytest.Server) {
	s.AddRegister("alpha", "country", "country", "name", "official-name", "start-date")
	s.AddRecords("alpha", "country", `{
		"GB": {"country": "GB", "name": "United Kingdom", "official-name": "The United Kingdom of Great Britain and Northern Ireland", "entry-number": "1", "entry-timestamp": "2016-04-05T13:23:05Z", "item-hash": "sha-256:aa"},
		"FR": {"country": "FR", "name": "France", "entry-number": "2"},
		"DE": {"country": "DE", "name": ""}
	}`)
}
