package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relaycrypto "github.com/eddsa-relay/relay/crypto"
)

func TestGenerateEd25519KeyPair(t *testing.T) {
	kp, err := GenerateEd25519KeyPair()
	require.NoError(t, err)
	assert.NotNil(t, kp.PublicKey())
	assert.NotNil(t, kp.PrivateKey())
	assert.Equal(t, relaycrypto.KeyTypeEd25519, kp.Type())
	assert.NotEmpty(t, kp.ID())
}

func TestEd25519KeyPairSignAndVerify(t *testing.T) {
	kp, err := GenerateEd25519KeyPair()
	require.NoError(t, err)

	message := []byte("register session-1")
	sig, err := kp.Sign(message)
	require.NoError(t, err)

	assert.NoError(t, kp.Verify(message, sig))
	assert.ErrorIs(t, kp.Verify([]byte("tampered"), sig), relaycrypto.ErrInvalidSignature)
}

func TestGenerateEd25519KeyPairDistinctFingerprints(t *testing.T) {
	a, err := GenerateEd25519KeyPair()
	require.NoError(t, err)
	b, err := GenerateEd25519KeyPair()
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
}
