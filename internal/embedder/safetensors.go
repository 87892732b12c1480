package embedder

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// maxHeaderSize bounds the JSON header of a safetensors file
const maxHeaderSize = 100 << 20

// tensorInfo is one entry of a safetensors header
type tensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// Matrix is a dense row-major float32 matrix
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// Row returns row i
func (m *Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// readSafetensorsMatrix loads a 2-D tensor from a safetensors file. When name
// is empty or missing, the file must hold exactly one 2-D tensor.
func readSafetensorsMatrix(path, name string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var headerSize uint64
	if err := binary.Read(f, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("read header size: %w", err)
	}
	if headerSize == 0 || headerSize > maxHeaderSize {
		return nil, fmt.Errorf("invalid safetensors header size %d", headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(f, headerBytes); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	delete(header, "__metadata__")

	info, err := selectTensor(header, name)
	if err != nil {
		return nil, err
	}
	if len(info.Shape) != 2 || info.Shape[0] <= 0 || info.Shape[1] <= 0 {
		return nil, fmt.Errorf("tensor must be 2-D, got shape %v", info.Shape)
	}

	var width int64
	switch info.DType {
	case "F32":
		width = 4
	case "F16":
		width = 2
	default:
		return nil, fmt.Errorf("%w: tensor dtype %s", ErrUnsupportedDType, info.DType)
	}

	count := int64(info.Shape[0]) * int64(info.Shape[1])
	start, end := info.DataOffsets[0], info.DataOffsets[1]
	if end-start != count*width || start < 0 {
		return nil, fmt.Errorf("tensor data offsets %v do not match shape %v", info.DataOffsets, info.Shape)
	}

	raw := make([]byte, end-start)
	if _, err := f.ReadAt(raw, 8+int64(headerSize)+start); err != nil {
		return nil, fmt.Errorf("read tensor data: %w", err)
	}

	data := make([]float32, count)
	if width == 4 {
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	} else {
		for i := range data {
			data[i] = float16ToFloat32(binary.LittleEndian.Uint16(raw[i*2:]))
		}
	}

	return &Matrix{Rows: info.Shape[0], Cols: info.Shape[1], Data: data}, nil
}

func selectTensor(header map[string]json.RawMessage, name string) (*tensorInfo, error) {
	if raw, ok := header[name]; ok && name != "" {
		var info tensorInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, fmt.Errorf("parse tensor %s: %w", name, err)
		}
		return &info, nil
	}

	var found *tensorInfo
	for key, raw := range header {
		var info tensorInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, fmt.Errorf("parse tensor %s: %w", key, err)
		}
		if len(info.Shape) != 2 {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("tensor %q not found and file holds several 2-D tensors", name)
		}
		found = &info
	}
	if found == nil {
		return nil, fmt.Errorf("no 2-D tensor in file")
	}
	return found, nil
}

// float16ToFloat32 converts an IEEE 754 half-precision value
func float16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff

	switch {
	case exp == 0 && frac == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// subnormal: normalize
		e := uint32(127 - 15 + 1)
		for frac&0x400 == 0 {
			frac <<= 1
			e--
		}
		frac &= 0x3ff
		return math.Float32frombits(sign | e<<23 | frac<<13)
	case exp == 0x1f:
		return math.Float32frombits(sign | 0xff<<23 | frac<<13)
	default:
		return math.Float32frombits(sign | (exp+127-15)<<23 | frac<<13)
	}
}
