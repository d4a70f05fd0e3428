// Package blockcodec frames a byte stream into independently compressed
// blocks. Each block is written as
//
//	[uncompressed size uint32][compressed size uint32][payload]
//
// where a compressed size of 0 means the payload is stored raw.
package blockcodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type selects the block compression algorithm.
type Type uint8

const (
	// None stores blocks uncompressed.
	None Type = 0
	// LZ4 uses LZ4 block compression (fast).
	LZ4 Type = 1
	// ZSTD uses Zstandard (better ratio).
	ZSTD Type = 2
)

// DefaultBlockSize is used when a Writer is created with a non-positive size.
const DefaultBlockSize = 256 * 1024

// maxBlockSize guards Reader allocations against corrupt headers.
const maxBlockSize = 64 << 20

const headerSize = 8

var (
	// ErrCorrupt is returned for truncated or inconsistent blocks.
	ErrCorrupt = errors.New("blockcodec: corrupt block")

	// ErrUnknownType is returned for an unsupported compression type.
	ErrUnknownType = errors.New("blockcodec: unknown compression type")
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Valid reports whether t is a supported type.
func (t Type) Valid() bool { return t <= ZSTD }

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

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func compress(data []byte, t Type) ([]byte, error) {
	switch t {
	case None:
		return nil, nil
	case LZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	case ZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
}

func decompress(payload []byte, size int, t Type) ([]byte, error) {
	out := make([]byte, size)
	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		decoded, err := dec.DecodeAll(payload, out[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if len(decoded) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: compressed block with type %s", ErrCorrupt, t)
	}
}

// Writer buffers writes and emits them as compressed blocks.
// Close must be called to flush the final block.
type Writer struct {
	w         io.Writer
	typ       Type
	blockSize int
	buf       *bytes.Buffer
	written   int64
	header    [headerSize]byte
}

// NewWriter returns a Writer compressing with t into w.
func NewWriter(w io.Writer, t Type, blockSize int) (*Writer, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Writer{
		w:         w,
		typ:       t,
		blockSize: blockSize,
		buf:       bytes.NewBuffer(make([]byte, 0, blockSize)),
	}, nil
}

// Write buffers p, flushing full blocks as needed.
func (c *Writer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		room := c.blockSize - c.buf.Len()
		if room <= 0 {
			if err := c.Flush(); err != nil {
				return total, err
			}
			room = c.blockSize
		}
		n := min(len(p), room)
		c.buf.Write(p[:n])
		total += n
		p = p[n:]
	}
	return total, nil
}

// Flush compresses and writes the buffered block, if any.
func (c *Writer) Flush() error {
	if c.buf.Len() == 0 {
		return nil
	}
	data := c.buf.Bytes()
	compressed, err := compress(data, c.typ)
	if err != nil {
		return err
	}

	payload := compressed
	// Store raw when compression does not save at least 10%.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		payload = data
		compressed = nil
	}

	binary.LittleEndian.PutUint32(c.header[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(c.header[4:], uint32(len(compressed)))
	if _, err := c.w.Write(c.header[:]); err != nil {
		return err
	}
	if _, err := c.w.Write(payload); err != nil {
		return err
	}
	c.written += int64(headerSize + len(payload))
	c.buf.Reset()
	return nil
}

// Close flushes the final block. It does not close the underlying writer.
func (c *Writer) Close() error {
	return c.Flush()
}

// BytesWritten returns the number of framed bytes written so far.
func (c *Writer) BytesWritten() int64 {
	return c.written
}

// Reader decodes a stream produced by Writer.
type Reader struct {
	r     io.Reader
	typ   Type
	block []byte
	off   int
	err   error
}

// NewReader returns a Reader decoding blocks compressed with t from r.
func NewReader(r io.Reader, t Type) (*Reader, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	return &Reader{r: r, typ: t}, nil
}

// Read implements io.Reader.
func (c *Reader) Read(p []byte) (int, error) {
	for c.off >= len(c.block) {
		if c.err != nil {
			return 0, c.err
		}
		c.block, c.err = c.next()
		c.off = 0
		if c.err != nil && len(c.block) == 0 {
			return 0, c.err
		}
	}
	n := copy(p, c.block[c.off:])
	c.off += n
	return n, nil
}

func (c *Reader) next() ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(c.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	size := binary.LittleEndian.Uint32(header[0:])
	compressedSize := binary.LittleEndian.Uint32(header[4:])
	if size > maxBlockSize || compressedSize > maxBlockSize {
		return nil, fmt.Errorf("%w: block size %d exceeds limit", ErrCorrupt, max(size, compressedSize))
	}

	if compressedSize == 0 {
		out := make([]byte, size)
		if _, err := io.ReadFull(c.r, out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return out, nil
	}

	payload := make([]byte, compressedSize)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return decompress(payload, int(size), c.typ)
}
