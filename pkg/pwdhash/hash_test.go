package pwdhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashKey(t *testing.T) {
	key := NewKey()
	require.Len(t, key, 32)
	require.NotEqual(t, key, NewKey())

	h1 := HashKeyBase64(key)
	h2 := HashKeyBase64(key)
	require.NotEqual(t, h1, h2)
	require.True(t, VerifyKeyBase64(key, h1))
	require.True(t, VerifyKeyBase64(key, h2))
	require.False(t, VerifyKeyBase64(key+"x", h1))
	require.False(t, VerifyKeyBase64(key, ""))
	require.False(t, VerifyKeyBase64(key, "!!not base64"))
	require.False(t, VerifyKeyBase64(key, h1[:20]))
}
