package image

import (
	"bytes"
	"math/rand"
	"sync"
	"testing"

	"bootsect/crypto"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestBuild_SelfLoop(t *testing.T) {
	img, err := Build([]byte{0xEB, 0xFE}, SectorSize, Signature)
	require.NoError(t, err)
	data := img.Bytes()
	require.Len(t, data, 512)
	require.Equal(t, []byte{0xEB, 0xFE}, data[0:2])
	require.Equal(t, make([]byte, 508), data[2:510])
	require.Equal(t, []byte{0x55, 0xAA}, data[510:512])
	require.NoError(t, Verify(data, SectorSize, Signature))
}

func TestBuild_PayloadBounds(t *testing.T) {
	tests := []struct {
		name       string
		payloadLen int
		sectorSize uint
		err        error
	}{
		{"empty payload", 0, 512, nil},
		{"exactly fills available space", 510, 512, nil},
		{"one byte too large", 511, 512, ErrPayloadTooLarge},
		{"full sector", 512, 512, ErrPayloadTooLarge},
		{"larger signed image", 2046, 2048, nil},
		{"signature only sector", 0, 2, nil},
		{"sector smaller than signature", 0, 1, ErrInvalidSectorSize},
		{"zero sector size", 0, 0, ErrInvalidSectorSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bytes.Repeat([]byte{0x90}, tt.payloadLen)
			img, err := Build(payload, tt.sectorSize, Signature)
			if tt.err != nil {
				require.True(t, errors.Is(err, tt.err), "expected %v, got %v", tt.err, err)
				require.True(t, img.IsZero())
				return
			}
			require.NoError(t, err)
			require.Equal(t, int(tt.sectorSize), img.Len())
			require.Equal(t, payload, img.Payload())
			require.Equal(t, tt.sectorSize-SignatureSize-uint(tt.payloadLen), img.Layout().PaddingLen())
		})
	}
}

func TestBuild_Invariants(t *testing.T) {
	r := rand.New(rand.NewSource(0x7C00))
	for _, sectorSize := range []uint{2, 3, 64, 512, 1024, 2048} {
		for i := 0; i < 50; i++ {
			payload := make([]byte, r.Intn(int(sectorSize)-1))
			r.Read(payload)
			img, err := Build(payload, sectorSize, Signature)
			require.NoError(t, err)

			data := img.Bytes()
			require.Len(t, data, int(sectorSize))
			require.Equal(t, payload, data[:len(payload)])
			for _, b := range data[len(payload) : sectorSize-2] {
				require.Equal(t, byte(PaddingByte), b)
			}
			require.Equal(t, []byte{0x55, 0xAA}, data[sectorSize-2:])
		}
	}
}

func TestBuild_DoesNotMutatePayload(t *testing.T) {
	payload := []byte{0xB4, 0x0E, 0xB0, 0x42}
	orig := append([]byte(nil), payload...)
	img, err := BuildDefault(payload)
	require.NoError(t, err)
	require.Equal(t, orig, payload)

	data := img.Bytes()
	data[0] = 0x00
	require.Equal(t, byte(0xB4), img.Bytes()[0])
}

func TestBuild_Idempotent(t *testing.T) {
	payload := []byte("Booting...")
	a, err := BuildDefault(payload)
	require.NoError(t, err)
	b, err := BuildDefault(payload)
	require.NoError(t, err)
	require.Equal(t, a.Bytes(), b.Bytes())

	require.Equal(t, a.Hash(), b.Hash())
	require.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestBootImage_Hash(t *testing.T) {
	img, err := BuildDefault([]byte{0xEB, 0xFE})
	require.NoError(t, err)
	require.Equal(t, crypto.Blake2B256(img.Bytes()), img.Hash())

	other, err := BuildDefault([]byte{0xEB, 0xFD})
	require.NoError(t, err)
	require.NotEqual(t, img.Hash(), other.Hash())
}

func TestBuild_Concurrent(t *testing.T) {
	payload := []byte{0xEB, 0xFE}
	expected, err := BuildDefault(payload)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 16)
	for i := 0; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := BuildDefault(payload)
			if err == nil {
				results[i] = img.Bytes()
			}
		}(i)
	}
	wg.Wait()
	for _, res := range results {
		require.Equal(t, expected.Bytes(), res)
	}
}

func TestBuild_CustomSignature(t *testing.T) {
	img, err := Build(nil, 4, 0x1234)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00, 0x34, 0x12}, img.Bytes())
	require.Equal(t, uint16(0x1234), img.Signature())
}

func TestEncodeDecode(t *testing.T) {
	img, err := BuildDefault([]byte{0xEB, 0xFE})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, img.Encode(&buf))
	require.Equal(t, SectorSize, buf.Len())

	decoded, err := Decode(&buf, SectorSize, Signature)
	require.NoError(t, err)
	require.Equal(t, img.Bytes(), decoded.Bytes())
	require.EqualValues(t, MaxPayloadSize, decoded.Layout().PayloadLen)
}

func TestDecode_Short(t *testing.T) {
	_, err := Decode(bytes.NewReader(make([]byte, 100)), SectorSize, Signature)
	require.Error(t, err)
}

func TestLayout_String(t *testing.T) {
	l, err := NewLayout(512, 2)
	require.NoError(t, err)
	require.Equal(t, "payload [0x0000,0x0002) padding [0x0002,0x01fe) signature [0x01fe,0x0200)", l.String())
}
