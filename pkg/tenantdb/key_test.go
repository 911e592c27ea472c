package tenantdb_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/tenantdb"
)

func TestParseKey(t *testing.T) {
	t.Parallel()

	valid := []struct {
		raw  string
		want string
	}{
		{"abc", "abc"},
		{"a1-b2", "a1-b2"},
		{"ABCdef", "abcdef"},
		{"  acme ", "acme"},
		{"a-b-c-d", "a-b-c-d"},
		{"123", "123"},
		{strings.Repeat("x", tenantdb.MaxKeyLength), strings.Repeat("x", tenantdb.MaxKeyLength)},
	}
	for _, tt := range valid {
		t.Run("accepts "+tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := tenantdb.ParseKey(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	invalid := []string{
		"",
		"   ",
		"ab",
		"-abc",
		"abc-",
		"ab_c",
		"ab.c",
		"acme corp",
		"ünï",
		strings.Repeat("x", tenantdb.MaxKeyLength+1),
	}
	for _, raw := range invalid {
		t.Run("rejects "+raw, func(t *testing.T) {
			t.Parallel()
			_, err := tenantdb.ParseKey(raw)
			assert.ErrorIs(t, err, tenantdb.ErrInvalidTenantKey)
		})
	}
}

func TestDatabaseName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "webix_acme", tenantdb.DatabaseName("webix", "acme"))
}
