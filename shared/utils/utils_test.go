package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Xdfio23")
	require.NoError(t, err)

	assert.NotEqual(t, "Xdfio23", hash)
	assert.True(t, CheckPassword("Xdfio23", hash))
	assert.False(t, CheckPassword("xdfio23", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("1234")
	require.NoError(t, err)
	second, err := HashPassword("1234")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("1234", "not-a-bcrypt-hash"))
}
