// Package payload assembles small real-mode boot payloads whose label
// references follow an addr.Model.
package payload

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"bootsect/addr"

	"github.com/pkg/errors"
)

var (
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrUndefinedLabel = errors.New("undefined label")
	ErrJumpOutOfRange = errors.New("short jump out of range")
)

type fixupKind int

const (
	fixupAbs16 fixupKind = iota
	fixupRel8
)

type fixup struct {
	kind  fixupKind
	at    int
	label string
}

// Assembler emits instructions into a buffer and patches label references
// once every label is known.
type Assembler struct {
	model  addr.Model
	buf    bytes.Buffer
	labels map[string]addr.Offset
	fixups []fixup
	err    error
}

func NewAssembler(model addr.Model) *Assembler {
	return &Assembler{
		model:  model,
		labels: make(map[string]addr.Offset),
	}
}

func (a *Assembler) Model() addr.Model {
	return a.model
}

// Offset returns the current emission offset.
func (a *Assembler) Offset() addr.Offset {
	return addr.Offset(a.buf.Len())
}

func (a *Assembler) Label(name string) *Assembler {
	if _, ok := a.labels[name]; ok {
		a.fail(errors.Wrap(ErrDuplicateLabel, name))
		return a
	}
	a.labels[name] = a.Offset()
	return a
}

func (a *Assembler) MovAH(v byte) *Assembler {
	return a.emit(OpMovAHImm, v)
}

func (a *Assembler) MovAL(v byte) *Assembler {
	return a.emit(OpMovALImm, v)
}

// MovALLabel loads the byte at label into AL. Under the runtime policy
// there is no way to bias a direct memory operand, so the address goes
// through BX.
func (a *Assembler) MovALLabel(label string) *Assembler {
	if a.model.RuntimeAddend() != 0 {
		return a.LoadLabel(RegBX, label).MovALAtBX()
	}
	a.emit(OpMovALMem)
	return a.abs16(label)
}

// LoadLabel puts the absolute address of label into reg, adding the load
// address at runtime when the model asks for it.
func (a *Assembler) LoadLabel(reg Reg16, label string) *Assembler {
	a.emit(reg.movImm())
	a.abs16(label)
	if addend := a.model.RuntimeAddend(); addend != 0 {
		a.AddImm(reg, addend)
	}
	return a
}

func (a *Assembler) AddImm(reg Reg16, v uint16) *Assembler {
	a.emit(OpGrp1Imm, reg.addModRM())
	return a.imm16(v)
}

func (a *Assembler) MovALAtBX() *Assembler {
	return a.emit(OpMovR8RM, ModRMALAtBX)
}

func (a *Assembler) Lodsb() *Assembler {
	return a.emit(OpLodsb)
}

func (a *Assembler) Inc(reg Reg16) *Assembler {
	return a.emit(reg.inc())
}

func (a *Assembler) CmpAL(v byte) *Assembler {
	return a.emit(OpCmpALImm, v)
}

func (a *Assembler) JE(label string) *Assembler {
	a.emit(OpJE)
	return a.rel8(label)
}

func (a *Assembler) JNE(label string) *Assembler {
	a.emit(OpJNE)
	return a.rel8(label)
}

func (a *Assembler) Jmp(label string) *Assembler {
	a.emit(OpJmpShort)
	return a.rel8(label)
}

// JmpSelf emits `jmp $`.
func (a *Assembler) JmpSelf() *Assembler {
	return a.emit(SelfLoop...)
}

func (a *Assembler) Int(v byte) *Assembler {
	return a.emit(OpInt, v)
}

// PrintAL emits the BIOS teletype call for the character in AL. AH must
// already hold the teletype function.
func (a *Assembler) PrintAL() *Assembler {
	return a.Int(IntVideo)
}

func (a *Assembler) Hlt() *Assembler {
	return a.emit(OpHlt)
}

func (a *Assembler) Cli() *Assembler {
	return a.emit(OpCli)
}

// ZeroDS clears DS through AX so that offsets are linear addresses.
func (a *Assembler) ZeroDS() *Assembler {
	a.emit(OpXorRM16, ModRMAXAX)
	return a.emit(OpMovSegRM, ModRMDSAX)
}

func (a *Assembler) DB(b ...byte) *Assembler {
	return a.emit(b...)
}

// Asciz emits s followed by a NUL terminator.
func (a *Assembler) Asciz(s string) *Assembler {
	a.emit([]byte(s)...)
	return a.emit(0x00)
}

// Assemble resolves every fixup and returns the payload bytes.
func (a *Assembler) Assemble() ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	out := make([]byte, a.buf.Len())
	copy(out, a.buf.Bytes())
	for _, f := range a.fixups {
		target, ok := a.labels[f.label]
		if !ok {
			return nil, errors.Wrap(ErrUndefinedLabel, f.label)
		}
		switch f.kind {
		case fixupAbs16:
			v, err := a.model.Embed(target)
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("error resolving label %s", f.label))
			}
			binary.LittleEndian.PutUint16(out[f.at:], v)
		case fixupRel8:
			disp := int(target) - (f.at + 1)
			if disp < -128 || disp > 127 {
				return nil, errors.Wrap(ErrJumpOutOfRange, fmt.Sprintf("%s is %d bytes away", f.label, disp))
			}
			out[f.at] = byte(int8(disp))
		}
	}
	return out, nil
}

// Labels returns a copy of the label table.
func (a *Assembler) Labels() map[string]addr.Offset {
	out := make(map[string]addr.Offset, len(a.labels))
	for k, v := range a.labels {
		out[k] = v
	}
	return out
}

func (a *Assembler) emit(b ...byte) *Assembler {
	a.buf.Write(b)
	return a
}

func (a *Assembler) imm16(v uint16) *Assembler {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return a.emit(b[:]...)
}

func (a *Assembler) abs16(label string) *Assembler {
	a.fixups = append(a.fixups, fixup{kind: fixupAbs16, at: a.buf.Len(), label: label})
	return a.emit(0x00, 0x00)
}

func (a *Assembler) rel8(label string) *Assembler {
	a.fixups = append(a.fixups, fixup{kind: fixupRel8, at: a.buf.Len(), label: label})
	return a.emit(0x00)
}

func (a *Assembler) fail(err error) {
	if a.err == nil {
		a.err = err
	}
}
