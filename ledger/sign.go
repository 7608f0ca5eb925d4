package ledger

import (
	"encoding/hex"

	"bootsect/crypto"
	"bootsect/manifest"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
)

var ErrInvalidManifestSignature = errors.New("invalid manifest signature")

// NewRecord signs m and returns a record ready for PutRecord.
func NewRecord(signer crypto.Signer, m manifest.Manifest) (*Record, error) {
	sig, err := manifest.Sign(signer, m)
	if err != nil {
		return nil, errors.Wrap(err, "error signing manifest")
	}
	return &Record{
		Manifest:          m,
		PublicKey:         hex.EncodeToString(signer.Pub().SerializeCompressed()),
		ManifestSignature: sig,
	}, nil
}

func (r *Record) PubKey() (*btcec.PublicKey, error) {
	data, err := hex.DecodeString(r.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding public key")
	}
	pub, err := btcec.ParsePubKey(data, btcec.S256())
	if err != nil {
		return nil, errors.Wrap(err, "error parsing public key")
	}
	return pub, nil
}

// VerifySignature checks the record's manifest signature against its
// public key.
func (r *Record) VerifySignature() error {
	pub, err := r.PubKey()
	if err != nil {
		return err
	}
	if !manifest.Verify(pub, r.ManifestSignature, r.Manifest) {
		return ErrInvalidManifestSignature
	}
	return nil
}
