// Package firmware simulates the part of a BIOS that matters to a boot
// sector: load sector 0 to the load address, check the signature, jump.
// It executes only the real-mode subset that package payload emits.
package firmware

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"bootsect/image"
	"bootsect/log"
	"bootsect/medium"
	"bootsect/payload"

	"github.com/pkg/errors"
)

const (
	MemorySize      = 1 << 20
	DefaultMaxSteps = 100000
	ivtVectors      = 256
	// every vector points at the BIOS dummy IRET handler F000:FF53
	ivtHandlerOffset  = 0xFF53
	ivtHandlerSegment = 0xF000
)

var (
	ErrNotBootable         = errors.New("medium is not bootable")
	ErrStepLimit           = errors.New("step limit exceeded")
	ErrUnsupportedOpcode   = errors.New("unsupported opcode")
	ErrUnsupportedInt      = errors.New("unsupported interrupt")
	ErrLoadAddressOverflow = errors.New("boot sector does not fit in memory at load address")
)

var logger = log.WithModule("firmware")

type HaltReason int

const (
	HaltSelfLoop HaltReason = iota
	HaltInstruction
)

func (h HaltReason) String() string {
	switch h {
	case HaltSelfLoop:
		return "jmp $"
	case HaltInstruction:
		return "hlt"
	default:
		return "unknown"
	}
}

// Result is what an observer of the screen and CPU sees after boot.
type Result struct {
	Output []byte
	IP     uint16
	Steps  int
	Halt   HaltReason
}

type registers struct {
	ax uint16
	bx uint16
	si uint16
	ds uint16
	ip uint16
	zf bool
}

func (r *registers) al() byte {
	return byte(r.ax)
}

func (r *registers) ah() byte {
	return byte(r.ax >> 8)
}

func (r *registers) setAL(v byte) {
	r.ax = r.ax&0xFF00 | uint16(v)
}

func (r *registers) setAH(v byte) {
	r.ax = r.ax&0x00FF | uint16(v)<<8
}

// Machine is a single-use real-mode CPU with 1 MiB of memory.
type Machine struct {
	MaxSteps int
	mem      []byte
	regs     registers
	output   bytes.Buffer
}

func NewMachine() *Machine {
	m := &Machine{
		MaxSteps: DefaultMaxSteps,
		mem:      make([]byte, MemorySize),
	}
	for i := 0; i < ivtVectors; i++ {
		binary.LittleEndian.PutUint16(m.mem[i*4:], ivtHandlerOffset)
		binary.LittleEndian.PutUint16(m.mem[i*4+2:], ivtHandlerSegment)
	}
	return m
}

// Boot loads the boot sector of r at loadAddress and runs it until it
// halts.
func (m *Machine) Boot(r io.ReaderAt, sectorSize uint, signature uint16, loadAddress uint) (*Result, error) {
	sector, err := medium.ReadBootSector(r, sectorSize)
	if err != nil {
		return nil, errors.Wrap(err, "error reading boot sector")
	}
	if err := image.Verify(sector, sectorSize, signature); err != nil {
		return nil, errors.Wrap(ErrNotBootable, err.Error())
	}
	if loadAddress+sectorSize > 0x10000 {
		return nil, ErrLoadAddressOverflow
	}
	copy(m.mem[loadAddress:], sector)
	m.regs = registers{ip: uint16(loadAddress)}
	logger.Debug("transferring control", "load_address", fmt.Sprintf("0x%04x", loadAddress))
	return m.run()
}

// Memory returns a copy of len bytes at linear address addr.
func (m *Machine) Memory(addr uint, n int) []byte {
	out := make([]byte, n)
	copy(out, m.mem[addr:])
	return out
}

func (m *Machine) run() (*Result, error) {
	for steps := 0; steps < m.MaxSteps; steps++ {
		ip := m.regs.ip
		if m.fetch(ip) == payload.OpJmpShort && m.fetch(ip+1) == 0xFE {
			return m.halt(HaltSelfLoop, steps), nil
		}
		halted, err := m.step()
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("at 0x%04x", ip))
		}
		if halted {
			return m.halt(HaltInstruction, steps+1), nil
		}
	}
	return nil, ErrStepLimit
}

func (m *Machine) halt(reason HaltReason, steps int) *Result {
	logger.Debug("machine halted", "reason", reason.String(), "ip", m.regs.ip, "steps", steps)
	return &Result{
		Output: append([]byte(nil), m.output.Bytes()...),
		IP:     m.regs.ip,
		Steps:  steps,
		Halt:   reason,
	}
}

func (m *Machine) fetch(ip uint16) byte {
	return m.mem[ip]
}

func (m *Machine) imm8() byte {
	b := m.fetch(m.regs.ip)
	m.regs.ip++
	return b
}

func (m *Machine) imm16() uint16 {
	lo := m.imm8()
	hi := m.imm8()
	return uint16(hi)<<8 | uint16(lo)
}

// load reads a data byte at DS:off.
func (m *Machine) load(off uint16) byte {
	return m.mem[(uint(m.regs.ds)<<4+uint(off))%MemorySize]
}

func (m *Machine) jumpIf(cond bool) {
	disp := int8(m.imm8())
	if cond {
		m.regs.ip = uint16(int(m.regs.ip) + int(disp))
	}
}

func (m *Machine) step() (bool, error) {
	op := m.imm8()
	switch op {
	case payload.OpMovAHImm:
		m.regs.setAH(m.imm8())
	case payload.OpMovALImm:
		m.regs.setAL(m.imm8())
	case payload.OpMovALMem:
		m.regs.setAL(m.load(m.imm16()))
	case payload.OpMovBXImm:
		m.regs.bx = m.imm16()
	case payload.OpMovSIImm:
		m.regs.si = m.imm16()
	case payload.OpGrp1Imm:
		switch modrm := m.imm8(); modrm {
		case payload.ModRMAddBX:
			m.regs.bx += m.imm16()
		case payload.ModRMAddSI:
			m.regs.si += m.imm16()
		default:
			return false, errors.Wrap(ErrUnsupportedOpcode, fmt.Sprintf("81 %02x", modrm))
		}
	case payload.OpMovR8RM:
		if modrm := m.imm8(); modrm != payload.ModRMALAtBX {
			return false, errors.Wrap(ErrUnsupportedOpcode, fmt.Sprintf("8a %02x", modrm))
		}
		m.regs.setAL(m.load(m.regs.bx))
	case payload.OpXorRM16:
		if modrm := m.imm8(); modrm != payload.ModRMAXAX {
			return false, errors.Wrap(ErrUnsupportedOpcode, fmt.Sprintf("31 %02x", modrm))
		}
		m.regs.ax = 0
		m.regs.zf = true
	case payload.OpMovSegRM:
		if modrm := m.imm8(); modrm != payload.ModRMDSAX {
			return false, errors.Wrap(ErrUnsupportedOpcode, fmt.Sprintf("8e %02x", modrm))
		}
		m.regs.ds = m.regs.ax
	case payload.OpLodsb:
		m.regs.setAL(m.load(m.regs.si))
		m.regs.si++
	case payload.OpIncBX:
		m.regs.bx++
		m.regs.zf = m.regs.bx == 0
	case payload.OpIncSI:
		m.regs.si++
		m.regs.zf = m.regs.si == 0
	case payload.OpCmpALImm:
		m.regs.zf = m.regs.al() == m.imm8()
	case payload.OpJE:
		m.jumpIf(m.regs.zf)
	case payload.OpJNE:
		m.jumpIf(!m.regs.zf)
	case payload.OpJmpShort:
		m.jumpIf(true)
	case payload.OpInt:
		return false, m.interrupt(m.imm8())
	case payload.OpCli:
	case payload.OpHlt:
		return true, nil
	default:
		return false, errors.Wrap(ErrUnsupportedOpcode, fmt.Sprintf("%02x", op))
	}
	return false, nil
}

func (m *Machine) interrupt(vector byte) error {
	if vector != payload.IntVideo {
		return errors.Wrap(ErrUnsupportedInt, fmt.Sprintf("int 0x%02x", vector))
	}
	if m.regs.ah() == payload.VideoTTYFunc {
		m.output.WriteByte(m.regs.al())
		return nil
	}
	// other video functions (modes, colors) have no observable effect here
	logger.Trace("ignoring video function", "ah", m.regs.ah())
	return nil
}
