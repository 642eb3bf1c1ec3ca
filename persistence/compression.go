package persistence

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm used for the body.
type CompressionType uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name (case-insensitive).
func ParseCompression(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	// Concurrency 1 decodes streams synchronously, so pooled decoders hold
	// no goroutines.
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compress returns the stored form of data and the compression actually
// applied. Bodies that do not shrink below 90% are stored uncompressed.
func compress(data []byte, ct CompressionType) ([]byte, CompressionType, error) {
	if ct == CompressionNone || len(data) == 0 {
		return data, CompressionNone, nil
	}

	var out []byte
	switch ct {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, CompressionNone, err
		}
		out = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		out = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, CompressionNone, fmt.Errorf("unsupported compression: %v", ct)
	}

	if len(out) == 0 || float64(len(out)) > float64(len(data))*0.9 {
		return data, CompressionNone, nil
	}
	return out, ct, nil
}

// lz4MaxRatio is the largest expansion an LZ4 block can encode.
const lz4MaxRatio = 255

// decompress restores a body of rawSize bytes. rawSize comes from an
// untrusted header, so nothing is allocated for it before the stored
// body has shown it can plausibly produce that much output.
func decompress(data []byte, ct CompressionType, rawSize int) ([]byte, error) {
	switch ct {
	case CompressionNone:
		if len(data) != rawSize {
			return nil, fmt.Errorf("%w: body size %d, expected %d", ErrCorrupt, len(data), rawSize)
		}
		return data, nil

	case CompressionLZ4:
		if rawSize/lz4MaxRatio > len(data) {
			return nil, fmt.Errorf("%w: %d lz4 bytes cannot hold %d", ErrCorrupt, len(data), rawSize)
		}
		result := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(data, result)
		if err != nil {
			return nil, err
		}
		if n != rawSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		if err := dec.Reset(bytes.NewReader(data)); err != nil {
			return nil, err
		}
		var out bytes.Buffer
		out.Grow(min(rawSize, 4*len(data)))
		// One byte past rawSize is enough to detect an oversized body.
		if _, err := io.Copy(&out, io.LimitReader(dec, int64(rawSize)+1)); err != nil {
			return nil, err
		}
		if out.Len() != rawSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return out.Bytes(), nil

	default:
		return nil, fmt.Errorf("unsupported compression: %v", ct)
	}
}
