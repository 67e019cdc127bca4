package openregister

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/go-openregister/internal/registrytest"
	"github.com/albertocavalcante/go-openregister/registry"
)

func registerNames(registers []*Register) []string {
	names := make([]string, len(registers))
	for i, r := range registers {
		names[i] = r.Name()
	}
	return names
}

func TestRegistersWithField(t *testing.T) {
	s := registrytest.NewServer(t)
	s.AddField("alpha", "organisation", registry.DatatypeCurie)
	s.AddRegister("alpha", "school", "school", "name", "organisation")
	s.AddRegister("alpha", "country", "country", "name")
	s.AddRegister("alpha", "prison", "prison", "name", "organisation")
	c := newTestCatalog(t, s)
	ctx := context.Background()

	registers, err := c.RegistersWithField(ctx, "organisation", "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"school", "prison"}, registerNames(registers))

	school, err := c.Register(ctx, "alpha", "school")
	require.NoError(t, err)
	assert.Same(t, school, registers[0], "discovery returns memoized registers")
	assert.Equal(t, 0, s.Hits(registrytest.Host("register", "alpha"), "/record/country.json"),
		"non-matching registers are not constructed")
}

func TestRegistersWithField_SkipsDeadRegisters(t *testing.T) {
	s := registrytest.NewServer(t)
	s.AddRegister("alpha", "school", "school", "name", "organisation")
	s.AddRegister("alpha", "school-trust", "school-trust", "name", "organisation")
	s.AddRegister("alpha", "school-authority", "school-authority", "name", "organisation")
	c := newTestCatalog(t, s, WithDeadRegisters("school-authority", "school-trust"))

	registers, err := c.RegistersWithField(context.Background(), "organisation", "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"school"}, registerNames(registers))
}

func TestRegistersWithField_NoMatches(t *testing.T) {
	s := registrytest.NewServer(t)
	s.AddRegister("alpha", "country", "country", "name")
	c := newTestCatalog(t, s)

	registers, err := c.RegistersWithField(context.Background(), "organisation", "alpha")
	require.NoError(t, err)
	assert.Empty(t, registers)
}

func TestRegistersWithField_IndexUnavailable(t *testing.T) {
	s := registrytest.NewServer(t)
	c := newTestCatalog(t, s)

	_, err := c.RegistersWithField(context.Background(), "organisation", "alpha")
	require.Error(t, err)
}

func TestCheckRegistersExist(t *testing.T) {
	s := registrytest.NewServer(t)
	s.AddRegister("alpha", "register", "register", "text", "fields")
	s.AddRecords("alpha", "register", `{
		"register-name-a": {"register": "register-name-a", "fields": ["register-name-a", "name"]},
		"register-name-b": {"register": "register-name-b", "fields": ["register-name-b", "name"]}
	}`)
	s.AddRegister("alpha", "register-name-a", "register-name-a", "name")
	s.AddRecords("alpha", "register-name-a", `{"1": {"name": "one"}}`)
	s.AddRegister("alpha", "register-name-b", "register-name-b", "name")
	s.Unreachable(registrytest.Host("register-name-b", "alpha"))
	c := newTestCatalog(t, s)

	var out bytes.Buffer
	broken, err := c.CheckRegistersExist(context.Background(), "alpha", &out)
	require.NoError(t, err)
	assert.Equal(t, "BROKEN: register-name-b\n", out.String())
	assert.Equal(t, []string{"register-name-b"}, broken)
}

func TestCheckRegistersExist_UntrustedCertificate(t *testing.T) {
	s := registrytest.NewServer(t)
	s.AddRegister("alpha", "register", "register", "text", "fields")
	s.AddRecords("alpha", "register", `{
		"register-name-a": {"register": "register-name-a"},
		"register-name-b": {"register": "register-name-b"},
		"register-name-c": {"register": "register-name-c"}
	}`)
	for _, name := range []string{"register-name-a", "register-name-b", "register-name-c"} {
		s.AddRegister("alpha", name, name, "name")
		s.AddRecords("alpha", name, `{}`)
	}
	s.UntrustedTLS(registrytest.Host("register-name-b", "alpha"))
	c := newTestCatalog(t, s)

	var out bytes.Buffer
	broken, err := c.CheckRegistersExist(context.Background(), "alpha", &out)
	require.NoError(t, err)
	assert.Equal(t, "BROKEN: register-name-b\n", out.String())
	assert.Equal(t, []string{"register-name-b"}, broken)
	assert.Equal(t, 1, s.Hits(registrytest.Host("register-name-c", "alpha"), "/records.json"),
		"the check continues past a bad certificate")
}

func TestCheckRegistersExist_InvalidNameReportedBroken(t *testing.T) {
	s := registrytest.NewServer(t)
	s.AddRegister("alpha", "register", "register", "text", "fields")
	s.AddRecords("alpha", "register", `{
		"Legacy_Register": {"register": "Legacy_Register"},
		"register-name-a": {"register": "register-name-a"}
	}`)
	s.AddRegister("alpha", "register-name-a", "register-name-a", "name")
	s.AddRecords("alpha", "register-name-a", `{"1": {"name": "one"}}`)
	c := newTestCatalog(t, s)

	var out bytes.Buffer
	broken, err := c.CheckRegistersExist(context.Background(), "alpha", &out)
	require.NoError(t, err)
	assert.Equal(t, "BROKEN: Legacy_Register\n", out.String())
	assert.Equal(t, []string{"Legacy_Register"}, broken)
	assert.Equal(t, 1, s.Hits(registrytest.Host("register-name-a", "alpha"), "/records.json"))
}

func TestCheckRegistersExist_OtherErrorsPropagate(t *testing.T) {
	s := registrytest.NewServer(t)
	s.AddRegister("alpha", "register", "register", "text", "fields")
	s.AddRecords("alpha", "register", `{"gone": {"register": "gone"}}`)
	c := newTestCatalog(t, s)

	var out bytes.Buffer
	_, err := c.CheckRegistersExist(context.Background(), "alpha", &out)
	require.Error(t, err)

	var serr *registry.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Empty(t, out.String())
}

func TestCheckRegistersExist_MasterUnreachable(t *testing.T) {
	s := registrytest.NewServer(t)
	s.Unreachable(registrytest.Host("register", "alpha"))
	c := newTestCatalog(t, s)

	_, err := c.CheckRegistersExist(context.Background(), "alpha", &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
}

func TestCollectFieldValues(t *testing.T) {
	s := registrytest.NewServer(t)
	seedSchools(s)
	s.AddRecords("alpha", "school", `{
		"100": {"name": "Hill Primary", "organisation": "other-register:123"},
		"101": {"name": "Vale Academy"}
	}`)
	c := newTestCatalog(t, s)

	matches, err := c.CollectFieldValues(context.Background(), "organisation", "alpha")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "school", matches[0].Register.Name())
	assert.Equal(t, "100", matches[0].RecordID)
	assert.Equal(t, "Hill Trust", matches[0].Value)
	assert.True(t, matches[0].OK)

	assert.Equal(t, "101", matches[1].RecordID)
	assert.False(t, matches[1].OK)
}
