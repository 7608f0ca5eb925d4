package ledger

import (
	"encoding/hex"
	"testing"
	"time"

	"bootsect/addr"
	"bootsect/image"
	"bootsect/manifest"
	"bootsect/testutil/testcrypto"

	"github.com/stretchr/testify/require"
)

func TestNewRecord_VerifySignature(t *testing.T) {
	img, err := image.BuildDefault([]byte{0xEB, 0xFE})
	require.NoError(t, err)
	m := manifest.New("loop", time.Unix(1760486400, 0), img, addr.DefaultModel())

	signer := testcrypto.FixedSigner(t)
	rec, err := NewRecord(signer, m)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(signer.Pub().SerializeCompressed()), rec.PublicKey)
	require.NoError(t, rec.VerifySignature())

	tampered := *rec
	tampered.Manifest.Name = "other"
	require.Equal(t, ErrInvalidManifestSignature, tampered.VerifySignature())

	_, otherPub := testcrypto.RandKey()
	tampered = *rec
	tampered.PublicKey = hex.EncodeToString(otherPub.SerializeCompressed())
	require.Equal(t, ErrInvalidManifestSignature, tampered.VerifySignature())

	tampered = *rec
	tampered.PublicKey = "zz"
	require.Error(t, tampered.VerifySignature())
}
