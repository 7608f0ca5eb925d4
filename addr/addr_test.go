package addr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		offset uint
		load   uint
		out    uint
	}{
		{0, 0x7C00, 0x7C00},
		{0x1d, 0x7C00, 0x7C1D},
		{0x1FF, 0x7C00, 0x7DFF},
		{0x10, 0, 0x10},
	}
	for _, tt := range tests {
		require.Equal(t, tt.out, Resolve(tt.offset, tt.load))
	}
}

func TestModel_Embed(t *testing.T) {
	tests := []struct {
		policy   Policy
		embedded uint16
		addend   uint16
		check    error
	}{
		{PolicyBuild, 0x7C1D, 0, nil},
		{PolicyRuntime, 0x001D, 0x7C00, nil},
		{PolicyNone, 0x001D, 0, ErrMissingBias},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			m, err := NewModel(DefaultLoadAddress, tt.policy)
			require.NoError(t, err)
			embedded, err := m.Embed(0x1D)
			require.NoError(t, err)
			require.Equal(t, tt.embedded, embedded)
			require.Equal(t, tt.addend, m.RuntimeAddend())

			err = m.Check(0x1D)
			if tt.check == nil {
				require.NoError(t, err)
				eff, err := m.Effective(0x1D)
				require.NoError(t, err)
				require.Equal(t, Address(0x7C1D), eff)
				return
			}
			require.True(t, errors.Is(err, tt.check), "got %v", err)
		})
	}
}

func TestModel_UnbiasedLabelAtZero(t *testing.T) {
	m, err := NewModel(DefaultLoadAddress, PolicyNone)
	require.NoError(t, err)
	eff, err := m.Effective(0)
	require.NoError(t, err)
	// the raw offset points at the interrupt vector table, not the image
	require.Equal(t, Address(0x0000), eff)
	require.Equal(t, uint(0x7C00), Resolve(0, DefaultLoadAddress))
	require.True(t, errors.Is(m.Check(0), ErrMissingBias))
}

func TestCheckBias(t *testing.T) {
	tests := []struct {
		name     string
		embedded uint
		addend   uint
		err      error
	}{
		{"pre-biased", 0x7C05, 0, nil},
		{"runtime biased", 0x0005, 0x7C00, nil},
		{"biased twice", 0x7C05, 0x7C00, ErrDoubleBias},
		{"never biased", 0x0005, 0, ErrMissingBias},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBias(5, tt.embedded, tt.addend, DefaultLoadAddress)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}
	require.Error(t, CheckBias(5, 0x1234, 0, DefaultLoadAddress))
}

func TestModel_Overflow(t *testing.T) {
	_, err := NewModel(0x10000, PolicyBuild)
	require.True(t, errors.Is(err, ErrAddressOverflow))

	m, err := NewModel(0xFF00, PolicyBuild)
	require.NoError(t, err)
	_, err = m.Embed(0x100)
	require.True(t, errors.Is(err, ErrAddressOverflow))
	_, err = m.Embed(0xFF)
	require.NoError(t, err)
}

func TestNewPolicy(t *testing.T) {
	for _, p := range []Policy{PolicyBuild, PolicyRuntime, PolicyNone} {
		parsed, err := NewPolicy(p.String())
		require.NoError(t, err)
		require.Equal(t, p, parsed)
	}
	_, err := NewPolicy("twice")
	require.True(t, errors.Is(err, ErrInvalidPolicy))

	var p Policy
	require.NoError(t, p.UnmarshalText([]byte("RUNTIME")))
	require.Equal(t, PolicyRuntime, p)
}
