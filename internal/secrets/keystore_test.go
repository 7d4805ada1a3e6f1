package secrets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeystoreRoundTrip(t *testing.T) {
	ks, err := New("test-master-key")
	require.NoError(t, err)

	token, err := ks.Encrypt("sk-abc123")
	require.NoError(t, err)
	require.NotEqual(t, "sk-abc123", token)

	plaintext, err := ks.Decrypt(token)
	require.NoError(t, err)
	require.Equal(t, "sk-abc123", plaintext)
}

func TestKeystoreEmptyValues(t *testing.T) {
	ks, err := New("test-master-key")
	require.NoError(t, err)

	token, err := ks.Encrypt("")
	require.NoError(t, err)
	require.Empty(t, token)

	plaintext, err := ks.Decrypt("")
	require.NoError(t, err)
	require.Empty(t, plaintext)
}

func TestKeystoreRejectsWrongKey(t *testing.T) {
	ks, err := New("key-one")
	require.NoError(t, err)
	token, err := ks.Encrypt("secret")
	require.NoError(t, err)

	other, err := New("key-two")
	require.NoError(t, err)
	_, err = other.Decrypt(token)
	require.Error(t, err)
}

func TestKeystoreRequiresMasterKey(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestKeystoreRejectsGarbage(t *testing.T) {
	ks, err := New("test-master-key")
	require.NoError(t, err)

	_, err = ks.Decrypt("not base64!!")
	require.Error(t, err)

	_, err = ks.Decrypt("YWJj")
	require.Error(t, err)
}
