package payload

import (
	"sort"

	"bootsect/addr"

	"github.com/pkg/errors"
)

var ErrUnknownProgram = errors.New("unknown program")

const (
	ProgramLoop   = "loop"
	ProgramRead   = "read"
	ProgramBanner = "banner"

	DefaultSecret = "B"
	DefaultBanner = "Booting..."
)

type programFunc func(a *Assembler, text string)

var programs = map[string]programFunc{
	ProgramLoop:   loopProgram,
	ProgramRead:   readProgram,
	ProgramBanner: bannerProgram,
}

// Programs lists the built-in program names in sorted order.
func Programs() []string {
	var names []string
	for name := range programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Program assembles a built-in program under model. text is the byte the
// read program prints (only its first byte is used) or the banner string.
func Program(name string, model addr.Model, text string) ([]byte, error) {
	fn, ok := programs[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownProgram, name)
	}
	a := NewAssembler(model)
	fn(a, text)
	return a.Assemble()
}

func loopProgram(a *Assembler, _ string) {
	a.JmpSelf()
}

// readProgram prints the single byte stored at a label.
func readProgram(a *Assembler, text string) {
	if text == "" {
		text = DefaultSecret
	}
	a.MovAH(VideoTTYFunc).
		MovALLabel("secret").
		PrintAL().
		JmpSelf().
		Label("secret").
		DB(text[0])
}

func bannerProgram(a *Assembler, text string) {
	if text == "" {
		text = DefaultBanner
	}
	a.ZeroDS().
		MovAH(VideoTTYFunc).
		LoadLabel(RegSI, "message").
		Label("next").
		Lodsb().
		CmpAL(0x00).
		JE("done").
		PrintAL().
		Jmp("next").
		Label("done").
		JmpSelf().
		Label("message").
		Asciz(text)
}
