package image

import (
	"bytes"
	"encoding/binary"
	"io"

	"bootsect/crypto"
	"bootsect/log"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

var (
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrInvalidSectorSize = errors.New("invalid sector size")
)

var logger = log.WithModule("image")

// BootImage is an immutable, signature-terminated boot sector.
type BootImage struct {
	data      []byte
	signature uint16
	layout    Layout
}

// Build concatenates payload, zero padding and the two signature bytes into
// an image of exactly sectorSize bytes. No image is produced on error.
func Build(payload []byte, sectorSize uint, signature uint16) (BootImage, error) {
	layout, err := NewLayout(sectorSize, uint(len(payload)))
	if err != nil {
		return BootImage{}, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, sectorSize))
	// buf.Write never fails
	buf.Write(payload)
	buf.Write(bytes.Repeat([]byte{PaddingByte}, int(layout.PaddingLen())))
	var sig [SignatureSize]byte
	binary.LittleEndian.PutUint16(sig[:], signature)
	buf.Write(sig[:])

	img := BootImage{
		data:      buf.Bytes(),
		signature: signature,
		layout:    layout,
	}
	logger.Debug(
		"built boot image",
		"sector_size", sectorSize,
		"payload_len", len(payload),
		"padding_len", layout.PaddingLen(),
	)
	return img, nil
}

// BuildDefault builds a canonical 512 byte image signed with 0xAA55.
func BuildDefault(payload []byte) (BootImage, error) {
	return Build(payload, SectorSize, Signature)
}

// Load verifies raw and wraps it as a BootImage. The payload length of a
// loaded image is unknown, so its layout treats everything before the
// signature as payload.
func Load(raw []byte, sectorSize uint, signature uint16) (BootImage, error) {
	if err := Verify(raw, sectorSize, signature); err != nil {
		return BootImage{}, err
	}
	data := make([]byte, len(raw))
	copy(data, raw)
	return BootImage{
		data:      data,
		signature: signature,
		layout: Layout{
			SectorSize: sectorSize,
			PayloadLen: sectorSize - SignatureSize,
		},
	}, nil
}

// Decode reads exactly sectorSize bytes from r and loads them.
func Decode(r io.Reader, sectorSize uint, signature uint16) (BootImage, error) {
	if sectorSize < SignatureSize {
		return BootImage{}, ErrInvalidSectorSize
	}
	raw := make([]byte, sectorSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return BootImage{}, errors.Wrap(err, "error reading boot sector")
	}
	return Load(raw, sectorSize, signature)
}

func (b BootImage) Encode(w io.Writer) error {
	_, err := w.Write(b.data)
	return err
}

// Bytes returns a copy of the image.
func (b BootImage) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

func (b BootImage) Len() int {
	return len(b.data)
}

func (b BootImage) IsZero() bool {
	return b.data == nil
}

func (b BootImage) Layout() Layout {
	return b.layout
}

func (b BootImage) Signature() uint16 {
	return b.signature
}

// Payload returns a copy of the payload region.
func (b BootImage) Payload() []byte {
	out := make([]byte, b.layout.PayloadLen)
	copy(out, b.data[:b.layout.PayloadLen])
	return out
}

// Hash returns the blake2b-256 digest of the whole sector.
func (b BootImage) Hash() crypto.Hash {
	return crypto.Blake2B256(b.data)
}

// Fingerprint returns a 64-bit content key used to find identical images.
func (b BootImage) Fingerprint() uint64 {
	return xxhash.Sum64(b.data)
}
