package image

import (
	"fmt"

	"github.com/pkg/errors"
)

// Layout describes the three regions of a boot image.
type Layout struct {
	SectorSize uint
	PayloadLen uint
}

func NewLayout(sectorSize uint, payloadLen uint) (Layout, error) {
	if sectorSize < SignatureSize {
		return Layout{}, errors.Wrap(
			ErrInvalidSectorSize,
			fmt.Sprintf("sector size %d is smaller than the %d byte signature", sectorSize, SignatureSize),
		)
	}
	if payloadLen > sectorSize-SignatureSize {
		return Layout{}, errors.Wrap(
			ErrPayloadTooLarge,
			fmt.Sprintf("payload is %d bytes (max %d)", payloadLen, sectorSize-SignatureSize),
		)
	}
	return Layout{
		SectorSize: sectorSize,
		PayloadLen: payloadLen,
	}, nil
}

func (l Layout) PaddingOffset() uint {
	return l.PayloadLen
}

func (l Layout) PaddingLen() uint {
	return l.SignatureOffset() - l.PayloadLen
}

func (l Layout) SignatureOffset() uint {
	return l.SectorSize - SignatureSize
}

func (l Layout) String() string {
	return fmt.Sprintf(
		"payload [0x%04x,0x%04x) padding [0x%04x,0x%04x) signature [0x%04x,0x%04x)",
		0, l.PayloadLen,
		l.PaddingOffset(), l.SignatureOffset(),
		l.SignatureOffset(), l.SectorSize,
	)
}
