// Package addr declares how label references inside a boot payload are
// turned into absolute real-mode addresses.
//
// Firmware copies the boot sector to a fixed load address before jumping to
// it, but an assembler counts label offsets from the first byte of the
// image. Every dereference must add the load address exactly once: either
// the assembler pre-biases the offset (Policy Build, the [org 0x7c00] style)
// or the code adds it before the access (Policy Runtime). Policy None never
// adds it and reads whatever sits at the raw offset in low memory.
package addr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultLoadAddress is where BIOS firmware places the boot sector.
	DefaultLoadAddress = 0x7C00
	// MaxAddress is the top of the 16-bit offset space with DS=0.
	MaxAddress = 0xFFFF
)

var (
	ErrDoubleBias      = errors.New("load address added twice")
	ErrMissingBias     = errors.New("load address never added")
	ErrAddressOverflow = errors.New("address exceeds 16-bit offset space")
	ErrInvalidPolicy   = errors.New("invalid bias policy")
)

// Offset is a position relative to the first byte of the loaded image.
type Offset uint

// Address is an absolute real-mode address.
type Address uint

func (o Offset) String() string {
	return fmt.Sprintf("image:0x%04x", uint(o))
}

func (a Address) String() string {
	return fmt.Sprintf("0x%04x", uint(a))
}

// Resolve returns the absolute address of a label at labelOffset once the
// image is loaded at loadAddress.
func Resolve(labelOffset uint, loadAddress uint) uint {
	return loadAddress + labelOffset
}

type Policy int

const (
	PolicyBuild Policy = iota
	PolicyRuntime
	PolicyNone
)

func NewPolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case PolicyBuild.String():
		return PolicyBuild, nil
	case PolicyRuntime.String():
		return PolicyRuntime, nil
	case PolicyNone.String():
		return PolicyNone, nil
	default:
		return PolicyBuild, errors.Wrap(ErrInvalidPolicy, s)
	}
}

func (p Policy) String() string {
	switch p {
	case PolicyBuild:
		return "build"
	case PolicyRuntime:
		return "runtime"
	case PolicyNone:
		return "none"
	default:
		return "unknown"
	}
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(b []byte) error {
	policy, err := NewPolicy(string(b))
	if err != nil {
		return err
	}
	*p = policy
	return nil
}

// Model is the single shared build-time addressing configuration. The
// image builder never sees it; only the payload assembler does.
type Model struct {
	LoadAddress uint
	Policy      Policy
}

func NewModel(loadAddress uint, policy Policy) (Model, error) {
	if loadAddress > MaxAddress {
		return Model{}, errors.Wrap(ErrAddressOverflow, fmt.Sprintf("load address 0x%x", loadAddress))
	}
	if policy < PolicyBuild || policy > PolicyNone {
		return Model{}, ErrInvalidPolicy
	}
	return Model{
		LoadAddress: loadAddress,
		Policy:      policy,
	}, nil
}

func DefaultModel() Model {
	return Model{
		LoadAddress: DefaultLoadAddress,
		Policy:      PolicyBuild,
	}
}

// Embed returns the value baked into an instruction that references the
// label at off.
func (m Model) Embed(off Offset) (uint16, error) {
	v := uint(off)
	if m.Policy == PolicyBuild {
		v = Resolve(v, m.LoadAddress)
	}
	if v > MaxAddress {
		return 0, errors.Wrap(ErrAddressOverflow, fmt.Sprintf("%s biased to 0x%x", off, v))
	}
	return uint16(v), nil
}

// RuntimeAddend returns what code must add to an embedded value before
// dereferencing it.
func (m Model) RuntimeAddend() uint16 {
	if m.Policy == PolicyRuntime {
		return uint16(m.LoadAddress)
	}
	return 0
}

// Effective returns the address a dereference of the label at off actually
// touches under this model.
func (m Model) Effective(off Offset) (Address, error) {
	embedded, err := m.Embed(off)
	if err != nil {
		return 0, err
	}
	return Address(uint(embedded) + uint(m.RuntimeAddend())), nil
}

// Check classifies the reference to off under this model. PolicyNone
// reports ErrMissingBias.
func (m Model) Check(off Offset) error {
	embedded, err := m.Embed(off)
	if err != nil {
		return err
	}
	return CheckBias(uint(off), uint(embedded), uint(m.RuntimeAddend()), m.LoadAddress)
}

// CheckBias compares the address a reference dereferences (embedded plus
// runtime addend) with the label's resolved address.
func CheckBias(labelOffset, embedded, addend, loadAddress uint) error {
	want := Resolve(labelOffset, loadAddress)
	got := embedded + addend
	switch {
	case got == want:
		return nil
	case loadAddress != 0 && got == want+loadAddress:
		return errors.Wrap(ErrDoubleBias, fmt.Sprintf("dereferences 0x%04x instead of 0x%04x", got, want))
	case got == labelOffset:
		return errors.Wrap(ErrMissingBias, fmt.Sprintf("dereferences 0x%04x instead of 0x%04x", got, want))
	default:
		return errors.Errorf("reference to offset 0x%04x dereferences 0x%04x instead of 0x%04x", labelOffset, got, want)
	}
}
