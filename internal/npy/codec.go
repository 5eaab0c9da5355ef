package npy

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Codec reads and writes segment files for one cache extension.
type Codec struct {
	compressed bool

	once    sync.Once
	decoder *zstd.Decoder
	encoder *zstd.Encoder
	initErr error
}

// NewCodec returns a codec for files with the given extension.
func NewCodec(ext string) *Codec {
	return &Codec{compressed: strings.HasSuffix(strings.ToLower(ext), ".zst")}
}

// Compressed reports whether files are zstd-wrapped.
func (c *Codec) Compressed() bool {
	return c.compressed
}

func (c *Codec) init() error {
	c.once.Do(func() {
		if !c.compressed {
			return
		}
		// DecodeAll is safe for concurrent callers.
		c.decoder, c.initErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if c.initErr != nil {
			return
		}
		c.encoder, c.initErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return c.initErr
}

// ReadFile decodes the samples stored at path. Errors satisfy os.IsNotExist
// when the file is absent.
func (c *Codec) ReadFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.Unmarshal(data)
}

// Unmarshal decodes a segment file image.
func (c *Codec) Unmarshal(data []byte) ([]float32, error) {
	if err := c.init(); err != nil {
		return nil, fmt.Errorf("npy: init zstd: %w", err)
	}
	if c.compressed {
		raw, err := c.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrFormat, err)
		}
		data = raw
	}
	return Decode(bytes.NewReader(data))
}

// Marshal encodes samples into a segment file image.
func (c *Codec) Marshal(samples []float32) ([]byte, error) {
	if err := c.init(); err != nil {
		return nil, fmt.Errorf("npy: init zstd: %w", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, samples); err != nil {
		return nil, err
	}
	if c.compressed {
		return c.encoder.EncodeAll(buf.Bytes(), nil), nil
	}
	return buf.Bytes(), nil
}

// WriteFile stores samples at path, replacing any existing file atomically.
func (c *Codec) WriteFile(path string, samples []float32) error {
	data, err := c.Marshal(samples)
	if err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Close releases the zstd state held by the codec.
func (c *Codec) Close() {
	if c.decoder != nil {
		c.decoder.Close()
	}
	if c.encoder != nil {
		_ = c.encoder.Close()
	}
}
