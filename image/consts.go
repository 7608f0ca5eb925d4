package image

const (
	// SectorSize is the canonical boot sector size read by BIOS firmware.
	SectorSize = 512
	// Signature is the boot signature as a little-endian word. It is stored
	// on the medium as 0x55 followed by 0xAA.
	Signature     uint16 = 0xAA55
	SignatureSize        = 2
	// MaxPayloadSize is the largest payload that fits a canonical sector.
	MaxPayloadSize = SectorSize - SignatureSize
	PaddingByte    = 0x00
)
