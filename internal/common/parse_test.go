package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUint64orHex(t *testing.T) {
	decimal := "12345"
	v, err := ParseUint64orHex(&decimal)
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), v)

	hex := "0x7dfd25"
	v, err = ParseUint64orHex(&hex)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x7dfd25), v)

	v, err = ParseUint64orHex(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	bad := "not a number"
	_, err = ParseUint64orHex(&bad)
	require.Error(t, err)
}

func TestToLowerWithTrim(t *testing.T) {
	assert.Equal(t, "debug", ToLowerWithTrim("  DEBUG "))
	assert.Equal(t, "info", ToLowerWithTrim("info"))
}
