package cli

import (
	"bootsect/config"
	"bootsect/crypto"
)

func GetSigner(homeDir string) (crypto.Signer, error) {
	identity, err := config.ReadIdentity(homeDir)
	if err != nil {
		return nil, err
	}
	return crypto.NewSECP256k1Signer(identity.PrivateKey), nil
}
