package crypto

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
)

const SignatureLen = 65

type Signature [SignatureLen]byte

var ZeroSignature Signature

func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%x\"", s[:])), nil
}

func (s *Signature) UnmarshalJSON(b []byte) error {
	var hexStr string
	if err := json.Unmarshal(b, &hexStr); err != nil {
		return err
	}
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return errors.Wrap(err, "error decoding signature hex")
	}
	sig, err := NewSignatureFromBytes(raw)
	if err != nil {
		return err
	}
	*s = sig
	return nil
}

func NewSignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureLen {
		return sig, errors.New("signature must be 65 bytes")
	}
	copy(sig[:], b)
	return sig, nil
}

type Signer interface {
	Sign(Hasher) (Signature, error)
	Pub() *btcec.PublicKey
}

type SECP256k1Signer struct {
	pk *btcec.PrivateKey
}

func NewSECP256k1Signer(pk *btcec.PrivateKey) *SECP256k1Signer {
	return &SECP256k1Signer{
		pk: pk,
	}
}

func (s *SECP256k1Signer) Sign(hasher Hasher) (Signature, error) {
	var sig Signature
	hash, err := hasher.Hash()
	if err != nil {
		return sig, err
	}

	sigBuf, err := btcec.SignCompact(btcec.S256(), s.pk, hash.Bytes(), false)
	if err != nil {
		return sig, errors.Wrap(err, "error signing hash")
	}
	copy(sig[:], sigBuf)
	return sig, nil
}

func (s *SECP256k1Signer) Pub() *btcec.PublicKey {
	return s.pk.PubKey()
}

func VerifySigPub(pub *btcec.PublicKey, signature Signature, msg Hasher) bool {
	hash, err := msg.Hash()
	if err != nil {
		return false
	}
	key, _, err := btcec.RecoverCompact(btcec.S256(), signature[:], hash.Bytes())
	if err != nil {
		return false
	}
	return key.IsEqual(pub)
}
