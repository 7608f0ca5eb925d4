package testcrypto

import (
	"encoding/hex"
	"testing"

	"bootsect/crypto"

	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/require"
)

func RandKey() (*btcec.PrivateKey, *btcec.PublicKey) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		panic(err)
	}
	return priv, priv.PubKey()
}

func FixedKey(t *testing.T) (*btcec.PrivateKey, *btcec.PublicKey) {
	data, err := hex.DecodeString("86d4da79175bf6984ef62676a20069d35527c45ccc398d46b7fdb9b0783cccf7")
	require.NoError(t, err)
	return btcec.PrivKeyFromBytes(btcec.S256(), data)
}

func FixedSigner(t *testing.T) crypto.Signer {
	priv, _ := FixedKey(t)
	return crypto.NewSECP256k1Signer(priv)
}
