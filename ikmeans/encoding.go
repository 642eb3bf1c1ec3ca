package ikmeans

import (
	"encoding/binary"
	"fmt"
)

// modelHeaderSize is method(1) + dim(4) + k(4).
const modelHeaderSize = 9

// MarshalBinary encodes the method and the trained centers.
//
// Layout (little endian): [method u8][dim u32][k u32][centers k*dim i32].
func (m *Model) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, modelHeaderSize+4*len(m.centers))
	buf = append(buf, uint8(m.method))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(m.dim))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(m.k))
	for _, c := range m.centers {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c))
	}
	return buf, nil
}

// UnmarshalBinary restores a model encoded with MarshalBinary.
// Iteration cap, verbosity and seed are left untouched.
func (m *Model) UnmarshalBinary(data []byte) error {
	if len(data) < modelHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidEncoding, len(data))
	}
	method := Method(data[0])
	if !method.Valid() {
		return fmt.Errorf("%w: method %d", ErrInvalidEncoding, data[0])
	}
	dim := int(binary.LittleEndian.Uint32(data[1:]))
	k := int(binary.LittleEndian.Uint32(data[5:]))
	body := data[modelHeaderSize:]
	if uint64(k)*uint64(dim) != uint64(len(body))/4 || len(body)%4 != 0 {
		return fmt.Errorf("%w: k=%d dim=%d body=%d", ErrInvalidEncoding, k, dim, len(body))
	}

	centers := make([]int32, k*dim)
	for i := range centers {
		centers[i] = int32(binary.LittleEndian.Uint32(body[4*i:]))
	}

	m.method = method
	m.dim = dim
	m.k = k
	m.centers = centers
	return nil
}
