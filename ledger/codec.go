package ledger

import (
	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

const (
	CodecNone = "none"
	CodecS2   = "s2"
	CodecLZ4  = "lz4"
)

var ErrUnknownCodec = errors.New("unknown codec")

// Codec compresses stored images. Boot sectors are mostly zero padding, so
// they shrink well.
type Codec interface {
	Name() string
	// Compress returns nil with no error when data does not compress.
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, size int) ([]byte, error)
}

func GetCodec(name string) (Codec, error) {
	switch name {
	case CodecNone, "":
		return noopCodec{}, nil
	case CodecS2:
		return s2Codec{}, nil
	case CodecLZ4:
		return lz4Codec{}, nil
	default:
		return nil, errors.Wrap(ErrUnknownCodec, name)
	}
}

type noopCodec struct{}

func (noopCodec) Name() string {
	return CodecNone
}

func (noopCodec) Compress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

func (noopCodec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) != size {
		return nil, errors.Errorf("stored image is %d bytes, expected %d", len(data), size)
	}
	return append([]byte(nil), data...), nil
}

type s2Codec struct{}

func (s2Codec) Name() string {
	return CodecS2
}

func (s2Codec) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (s2Codec) Decompress(data []byte, size int) ([]byte, error) {
	out, err := s2.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding s2 image")
	}
	if len(out) != size {
		return nil, errors.Errorf("decoded image is %d bytes, expected %d", len(out), size)
	}
	return out, nil
}

type lz4Codec struct{}

func (lz4Codec) Name() string {
	return CodecLZ4
}

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	var c lz4.Compressor
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, errors.Wrap(err, "error compressing lz4 image")
	}
	if n == 0 {
		return nil, nil
	}
	return dst[:n], nil
}

func (lz4Codec) Decompress(data []byte, size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding lz4 image")
	}
	if n != size {
		return nil, errors.Errorf("decoded image is %d bytes, expected %d", n, size)
	}
	return buf, nil
}
