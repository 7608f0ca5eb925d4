// Package manifest hashes and signs the parameters an image was built with,
// so a ledger entry can be attributed to the identity that produced it.
package manifest

import (
	"encoding/binary"
	"hash"
	"time"

	"bootsect/addr"
	"bootsect/crypto"
	"bootsect/image"

	"github.com/btcsuite/btcd/btcec"
	"golang.org/x/crypto/blake2b"
)

const domainTag = "BOOTSECT"

// Manifest is everything needed to rebuild and check an image except the
// payload itself.
type Manifest struct {
	Name        string      `json:"name"`
	BuiltAt     time.Time   `json:"built_at"`
	SectorSize  uint32      `json:"sector_size"`
	Signature   uint16      `json:"signature"`
	LoadAddress uint32      `json:"load_address"`
	Policy      addr.Policy `json:"policy"`
	PayloadLen  uint32      `json:"payload_len"`
	ImageHash   crypto.Hash `json:"image_hash"`
}

// New describes img built under model. BuiltAt is truncated to seconds,
// which is the precision that gets hashed.
func New(name string, builtAt time.Time, img image.BootImage, model addr.Model) Manifest {
	imgHash := img.Hash()
	layout := img.Layout()
	return Manifest{
		Name:        name,
		BuiltAt:     builtAt.UTC().Truncate(time.Second),
		SectorSize:  uint32(layout.SectorSize),
		Signature:   img.Signature(),
		LoadAddress: uint32(model.LoadAddress),
		Policy:      model.Policy,
		PayloadLen:  uint32(layout.PayloadLen),
		ImageHash:   imgHash,
	}
}

func (m Manifest) Hash() (crypto.Hash, error) {
	h, _ := blake2b.New256(nil)
	if _, err := h.Write([]byte(domainTag)); err != nil {
		panic(err)
	}
	writeString(h, m.Name)
	writeUint(h, uint64(m.BuiltAt.Unix()))
	writeUint(h, uint64(m.SectorSize))
	writeUint(h, uint64(m.Signature))
	writeUint(h, uint64(m.LoadAddress))
	writeUint(h, uint64(m.Policy))
	writeUint(h, uint64(m.PayloadLen))
	if _, err := h.Write(m.ImageHash[:]); err != nil {
		panic(err)
	}

	var out crypto.Hash
	copy(out[:], h.Sum(nil))
	return out, nil
}

func Sign(signer crypto.Signer, m Manifest) (crypto.Signature, error) {
	return signer.Sign(m)
}

func Verify(pub *btcec.PublicKey, sig crypto.Signature, m Manifest) bool {
	return crypto.VerifySigPub(pub, sig, m)
}

// Matches reports whether img is the image m describes.
func (m Manifest) Matches(img image.BootImage) bool {
	imgHash := img.Hash()
	return imgHash == m.ImageHash && uint32(img.Len()) == m.SectorSize && img.Signature() == m.Signature
}

func writeString(h hash.Hash, s string) {
	writeUint(h, uint64(len(s)))
	if _, err := h.Write([]byte(s)); err != nil {
		panic(err)
	}
}

func writeUint(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	if _, err := h.Write(buf[:]); err != nil {
		panic(err)
	}
}
