package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var magic = []byte("\x93NUMPY")

// maxSamples bounds the allocation a corrupt shape can request.
const maxSamples = 1 << 28

// ErrFormat marks data that is not a supported .npy array.
var ErrFormat = errors.New("npy: unsupported format")

// Header describes the array stored in a .npy file.
type Header struct {
	Descr        string
	FortranOrder bool
	Shape        []int
}

// Len returns the number of elements described by the header.
func (h Header) Len() int {
	n := 1
	for _, dim := range h.Shape {
		n *= dim
	}
	return n
}

// Decode reads a one-dimensional array from r as float32 samples. Values are
// converted, never rescaled: an integer array holding 16384 decodes to
// 16384 whatever its width.
func Decode(r io.Reader) ([]float32, error) {
	br := bufio.NewReader(r)
	header, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	if len(header.Shape) != 1 {
		return nil, fmt.Errorf("%w: expected 1-d array, got shape %v", ErrFormat, header.Shape)
	}
	return readSamples(br, header.Descr, header.Len())
}

// ReadHeader consumes the magic string, version, and header dictionary.
func ReadHeader(r io.Reader) (Header, error) {
	prefix := make([]byte, len(magic)+2)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return Header{}, fmt.Errorf("%w: read preamble: %v", ErrFormat, err)
	}
	if !bytes.Equal(prefix[:len(magic)], magic) {
		return Header{}, fmt.Errorf("%w: bad magic", ErrFormat)
	}

	major := prefix[len(magic)]
	var headerLen int
	switch major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return Header{}, fmt.Errorf("%w: read header length: %v", ErrFormat, err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return Header{}, fmt.Errorf("%w: read header length: %v", ErrFormat, err)
		}
		headerLen = int(n)
	default:
		return Header{}, fmt.Errorf("%w: version %d", ErrFormat, major)
	}

	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return Header{}, fmt.Errorf("%w: read header: %v", ErrFormat, err)
	}
	return parseHeader(string(raw))
}

// parseHeader reads the Python dict literal written by numpy, e.g.
// {'descr': '<f4', 'fortran_order': False, 'shape': (16000,), }
func parseHeader(raw string) (Header, error) {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return Header{}, fmt.Errorf("%w: header is not a dict", ErrFormat)
	}

	var h Header
	descr, ok := dictValue(text, "descr")
	if !ok {
		return Header{}, fmt.Errorf("%w: header missing descr", ErrFormat)
	}
	h.Descr = strings.Trim(descr, `'"`)

	order, ok := dictValue(text, "fortran_order")
	if !ok {
		return Header{}, fmt.Errorf("%w: header missing fortran_order", ErrFormat)
	}
	h.FortranOrder = order == "True"

	shape, ok := dictValue(text, "shape")
	if !ok {
		return Header{}, fmt.Errorf("%w: header missing shape", ErrFormat)
	}
	shape = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(shape, "("), ")"))
	for _, part := range strings.Split(shape, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dim, err := strconv.Atoi(part)
		if err != nil || dim < 0 {
			return Header{}, fmt.Errorf("%w: bad shape dimension %q", ErrFormat, part)
		}
		h.Shape = append(h.Shape, dim)
	}
	return h, nil
}

// dictValue extracts the raw value text following 'key': up to the next
// top-level comma.
func dictValue(text, key string) (string, bool) {
	idx := strings.Index(text, "'"+key+"'")
	if idx < 0 {
		return "", false
	}
	rest := text[idx+len(key)+2:]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return "", false
	}
	rest = strings.TrimSpace(rest[colon+1:])
	depth := 0
	for i, r := range rest {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',', '}':
			if depth == 0 {
				return strings.TrimSpace(rest[:i]), true
			}
		}
	}
	return strings.TrimSpace(rest), true
}

func readSamples(r io.Reader, descr string, n int) ([]float32, error) {
	if len(descr) < 3 {
		return nil, fmt.Errorf("%w: dtype %q", ErrFormat, descr)
	}
	var order binary.ByteOrder
	switch descr[0] {
	case '<', '|', '=':
		order = binary.LittleEndian
	case '>':
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: dtype %q", ErrFormat, descr)
	}

	kind := descr[1:]
	width, ok := dtypeWidths[kind]
	if !ok {
		return nil, fmt.Errorf("%w: dtype %q", ErrFormat, descr)
	}
	if n > maxSamples {
		return nil, fmt.Errorf("%w: %d samples exceeds limit", ErrFormat, n)
	}
	buf := make([]byte, n*width)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: read %d samples: %v", ErrFormat, n, err)
	}

	out := make([]float32, n)
	for i := range out {
		chunk := buf[i*width : (i+1)*width]
		switch kind {
		case "f4":
			out[i] = math.Float32frombits(order.Uint32(chunk))
		case "f8":
			out[i] = float32(math.Float64frombits(order.Uint64(chunk)))
		case "i2":
			out[i] = float32(int16(order.Uint16(chunk)))
		case "i4":
			out[i] = float32(int32(order.Uint32(chunk)))
		}
	}
	return out, nil
}

var dtypeWidths = map[string]int{
	"f4": 4,
	"f8": 8,
	"i2": 2,
	"i4": 4,
}

// Encode writes samples as a version 1.0 little-endian float32 array.
func Encode(w io.Writer, samples []float32) error {
	dict := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d,), }", len(samples))
	// Header (magic + version + length + dict + newline) is padded to a
	// multiple of 64 bytes.
	preamble := len(magic) + 2 + 2
	total := preamble + len(dict) + 1
	if rem := total % 64; rem != 0 {
		dict += strings.Repeat(" ", 64-rem)
	}
	dict += "\n"
	if len(dict) > math.MaxUint16 {
		return fmt.Errorf("npy: header too long (%d bytes)", len(dict))
	}

	var buf bytes.Buffer
	buf.Grow(preamble + len(dict) + 4*len(samples))
	buf.Write(magic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(dict)))
	buf.WriteString(dict)
	data := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	buf.Write(data)
	_, err := w.Write(buf.Bytes())
	return err
}
