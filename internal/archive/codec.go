package archive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec names the compression applied to cached bodies. The name is stored
// alongside each row so a cache can hold a mix.
type Codec string

const (
	CodecNone Codec = "none"
	CodecLZ4  Codec = "lz4"
	CodecZstd Codec = "zstd"
)

func ParseCodec(s string) (Codec, error) {
	switch c := Codec(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CodecZstd, nil
	case CodecNone, CodecLZ4, CodecZstd:
		return c, nil
	default:
		return "", fmt.Errorf("archive: unknown codec %q (want none, lz4 or zstd)", s)
	}
}

var errIncompressible = errors.New("archive: incompressible")

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("archive: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("archive: zstd decoder initialization failed: " + err.Error())
	}
}

// compress returns the stored body and the codec actually used. Data that
// does not shrink is stored as CodecNone.
func compress(c Codec, data []byte) ([]byte, Codec, error) {
	var (
		out []byte
		err error
	)
	switch c {
	case CodecNone:
		return data, CodecNone, nil
	case CodecLZ4:
		out, err = compressLZ4(data)
	case CodecZstd:
		out = zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2))
		if len(out) >= len(data) {
			err = errIncompressible
		}
	default:
		return nil, "", fmt.Errorf("archive: unknown codec %q", c)
	}
	if errors.Is(err, errIncompressible) {
		return data, CodecNone, nil
	}
	if err != nil {
		return nil, "", err
	}
	return out, c, nil
}

const (
	// maxDecodedSize bounds the size a cached row may claim.
	maxDecodedSize = 1 << 30
	// lz4MaxRatio is the largest expansion an lz4 block can encode.
	lz4MaxRatio = 255
	// zstdSizeHint caps the buffer preallocated from a row's claimed size.
	zstdSizeHint = 64 << 20
)

// checkSize rejects decoded sizes the body cannot produce.
func checkSize(c Codec, bodyLen int, size int64) error {
	switch {
	case size < 0 || size > maxDecodedSize:
		return fmt.Errorf("archive: implausible decoded size %d", size)
	case c == CodecNone && size != int64(bodyLen):
		return fmt.Errorf("archive: raw body is %d bytes, row claims %d", bodyLen, size)
	case c == CodecLZ4 && size > int64(bodyLen)*lz4MaxRatio:
		return fmt.Errorf("archive: lz4 body of %d bytes cannot decode to %d", bodyLen, size)
	}
	return nil
}

func decompress(c Codec, body []byte, size int64) ([]byte, error) {
	if err := checkSize(c, len(body), size); err != nil {
		return nil, err
	}
	switch c {
	case CodecNone:
		return body, nil
	case CodecLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if int64(n) != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", n, size)
		}
		return out, nil
	case CodecZstd:
		out, err := zstdDecoder.DecodeAll(body, make([]byte, 0, min(size, zstdSizeHint)))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("archive: unknown codec %q", c)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 || n >= len(data) {
		return nil, errIncompressible
	}
	return dst[:n], nil
}
