// SPDX-License-Identifier: LGPL-3.0-or-later

package eddsa

import (
	"testing"

	"filippo.io/edwards25519"
	"github.com/stretchr/testify/require"
)

func TestKeyArtifactRoundTripPreservesAllPublics(t *testing.T) {
	dir := t.TempDir()

	k1, err := GenerateKeys(1)
	require.NoError(t, err)
	k2, err := GenerateKeys(2)
	require.NoError(t, err)

	publics := map[uint32]*edwards25519.Point{1: k1.Public, 2: k2.Public}
	k1.Finalize(publics)

	require.NoError(t, WriteKeyArtifact(dir, k1))

	loaded, err := ReadKeyArtifact(dir, 1)
	require.NoError(t, err)
	require.Equal(t, k1.Secret.Bytes(), loaded.Secret.Bytes())
	require.Equal(t, k1.Public.Bytes(), loaded.Public.Bytes())
	require.Equal(t, k1.APK.Bytes(), loaded.APK.Bytes())
	require.Len(t, loaded.AllPublics, 2)
	require.Equal(t, k1.Public.Bytes(), loaded.AllPublics[1].Bytes())
	require.Equal(t, k2.Public.Bytes(), loaded.AllPublics[2].Bytes())
}

func TestSignatureArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()

	k, err := GenerateKeys(1)
	require.NoError(t, err)
	nonce, err := GenerateNonce()
	require.NoError(t, err)

	k.Finalize(map[uint32]*edwards25519.Point{1: k.Public})
	message := []byte("sign this artifact")
	partial := PartialSign(k, nonce.R, nonce.Point, message)
	sig := AggregateSignature(nonce.Point, []*edwards25519.Scalar{partial})

	require.NoError(t, WriteSignatureArtifact(dir, 1, message, sig))

	artifact, loadedSig, err := ReadSignatureArtifact(dir, 1)
	require.NoError(t, err)
	require.Equal(t, message, artifact.Message)
	require.Equal(t, sig.R.Bytes(), loadedSig.R.Bytes())
	require.Equal(t, sig.S.Bytes(), loadedSig.S.Bytes())
}
