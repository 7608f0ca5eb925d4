package image

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

type VerifyErrorKind int

const (
	LengthMismatch VerifyErrorKind = iota
	SignatureMismatch
)

func (k VerifyErrorKind) String() string {
	switch k {
	case LengthMismatch:
		return "length mismatch"
	case SignatureMismatch:
		return "signature mismatch"
	default:
		return "unknown"
	}
}

// VerifyError describes an image that firmware would refuse to boot.
type VerifyError struct {
	Kind     VerifyErrorKind
	Expected uint
	Actual   uint
}

func (e *VerifyError) Error() string {
	switch e.Kind {
	case LengthMismatch:
		return fmt.Sprintf("length mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
	case SignatureMismatch:
		return fmt.Sprintf("signature mismatch: expected 0x%04x, got 0x%04x", e.Expected, e.Actual)
	default:
		return "verify error"
	}
}

// Verify checks the length and trailing signature of img. Payload bytes are
// not inspected.
func Verify(img []byte, sectorSize uint, signature uint16) error {
	if sectorSize < SignatureSize {
		return ErrInvalidSectorSize
	}
	if uint(len(img)) != sectorSize {
		return &VerifyError{
			Kind:     LengthMismatch,
			Expected: sectorSize,
			Actual:   uint(len(img)),
		}
	}
	actual := binary.LittleEndian.Uint16(img[sectorSize-SignatureSize:])
	if actual != signature {
		return &VerifyError{
			Kind:     SignatureMismatch,
			Expected: uint(signature),
			Actual:   uint(actual),
		}
	}
	return nil
}

// IsVerifyError reports whether err is a VerifyError of the given kind.
func IsVerifyError(err error, kind VerifyErrorKind) bool {
	var verr *VerifyError
	return errors.As(err, &verr) && verr.Kind == kind
}
