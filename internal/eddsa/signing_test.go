// SPDX-License-Identifier: LGPL-3.0-or-later

package eddsa

import (
	"testing"

	"filippo.io/edwards25519"
	"github.com/stretchr/testify/require"
)

// TestThreePartyAggregateSignatureVerifies runs a full 3-party keygen and
// signing round in-process and checks the resulting aggregate signature
// verifies both via the package's own Verify and via a plain Ed25519
// verifier (VerifyStandard / crypto/ed25519.Verify).
func TestThreePartyAggregateSignatureVerifies(t *testing.T) {
	const n = 3
	message := []byte("relay-coordinated aggregate signature")

	keys := make([]*Keys, n)
	publics := make(map[uint32]*edwards25519.Point, n)
	for i := 0; i < n; i++ {
		k, err := GenerateKeys(uint32(i + 1))
		require.NoError(t, err)
		keys[i] = k
		publics[uint32(i+1)] = k.Public
	}
	for _, k := range keys {
		k.Finalize(publics)
	}
	for i := 1; i < n; i++ {
		require.Equal(t, keys[0].APK.Bytes(), keys[i].APK.Bytes(), "every peer must compute the same aggregate public key")
	}

	nonces := make([]*Nonce, n)
	rPoints := make([]*edwards25519.Point, n)
	for i := 0; i < n; i++ {
		nonce, err := GenerateNonce()
		require.NoError(t, err)
		nonces[i] = nonce
		rPoints[i] = ClearCofactor(nonce.Point)
	}
	aggregateR := AggregateR(rPoints)

	partials := make([]*edwards25519.Scalar, n)
	for i := 0; i < n; i++ {
		partials[i] = PartialSign(keys[i], nonces[i].R, aggregateR, message)
	}

	sig := AggregateSignature(aggregateR, partials)

	require.NoError(t, Verify(keys[0].APK, message, sig))
	require.True(t, VerifyStandard(keys[0].APK, message, sig))
}

func TestCommitmentRoundTrip(t *testing.T) {
	nonce, err := GenerateNonce()
	require.NoError(t, err)
	require.True(t, VerifyCommitment(nonce.Commit.Hash, nonce.Point, nonce.Commit.Blinder))

	tampered := nonce.Commit.Blinder
	tampered[0] ^= 0xFF
	require.False(t, VerifyCommitment(nonce.Commit.Hash, nonce.Point, tampered))
}

func TestClearCofactorIsIdempotentOnPrimeOrderPoints(t *testing.T) {
	k, err := GenerateKeys(1)
	require.NoError(t, err)
	cleared := ClearCofactor(k.Public)
	require.Equal(t, k.Public.Bytes(), cleared.Bytes(), "a point already in the prime-order subgroup is unchanged by cofactor clearing")
}
