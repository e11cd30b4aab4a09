package pin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_SaltedPerCall(t *testing.T) {
	h1, err := Hash("123456")
	require.NoError(t, err)
	h2, err := Hash("123456")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "same PIN must hash to different outputs")
	assert.True(t, Verify("123456", h1))
	assert.True(t, Verify("123456", h2))
}

func TestVerify_WrongPIN(t *testing.T) {
	h, err := Hash("123456")
	require.NoError(t, err)

	assert.False(t, Verify("654321", h))
	assert.False(t, Verify("", h))
}

func TestVerify_MalformedHash(t *testing.T) {
	assert.False(t, Verify("123456", ""))
	assert.False(t, Verify("123456", "not-a-bcrypt-hash"))
	assert.False(t, Verify("123456", "$2a$garbage"))
}
