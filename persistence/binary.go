package persistence

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxBodySize bounds the body a reader will allocate for.
const maxBodySize = 1 << 36

// Write encodes a tree file. Magic, Version, NodeCount, sizes, Compression
// and Checksum of hdr are filled in by Write; ct is the requested
// compression, which is dropped if it does not pay off.
func Write(w io.Writer, hdr FileHeader, nodes []NodeRecord, ct CompressionType) error {
	raw := encodeNodes(nodes)

	body, applied, err := compress(raw, ct)
	if err != nil {
		return fmt.Errorf("compress body: %w", err)
	}

	hdr.Magic = MagicNumber
	hdr.Version = Version
	hdr.NodeCount = uint64(len(nodes))
	hdr.Compression = uint8(applied)
	hdr.BodySize = uint64(len(body))
	hdr.RawSize = uint64(len(raw))
	hdr.Checksum = CalculateChecksum(body)

	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// Read decodes a tree file, verifying magic, version and checksum.
func Read(r io.Reader) (*File, error) {
	var hdr FileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if hdr.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, hdr.Magic)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, hdr.Version)
	}
	if hdr.BodySize > maxBodySize || hdr.RawSize > maxBodySize {
		return nil, fmt.Errorf("%w: body of %d bytes", ErrCorrupt, hdr.BodySize)
	}

	cr := NewChecksumReader(r)
	body := make([]byte, hdr.BodySize)
	if _, err := io.ReadFull(cr, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if err := cr.Verify(hdr.Checksum); err != nil {
		return nil, err
	}

	raw, err := decompress(body, CompressionType(hdr.Compression), int(hdr.RawSize))
	if err != nil {
		return nil, fmt.Errorf("decompress body: %w", err)
	}

	nodes, err := decodeNodes(raw, hdr.NodeCount)
	if err != nil {
		return nil, err
	}
	return &File{Header: hdr, Nodes: nodes}, nil
}

// Record layout: [model len u32][model bytes][children i32].
func encodeNodes(nodes []NodeRecord) []byte {
	size := 0
	for _, n := range nodes {
		size += 8 + len(n.Model)
	}
	buf := make([]byte, 0, size)
	for _, n := range nodes {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(n.Model)))
		buf = append(buf, n.Model...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(n.Children))
	}
	return buf
}

func decodeNodes(raw []byte, count uint64) ([]NodeRecord, error) {
	if count > math.MaxInt32 || count > uint64(len(raw))/8 {
		return nil, fmt.Errorf("%w: %d nodes in %d bytes", ErrCorrupt, count, len(raw))
	}
	nodes := make([]NodeRecord, 0, count)
	off := 0
	for i := uint64(0); i < count; i++ {
		if len(raw)-off < 4 {
			return nil, fmt.Errorf("%w: truncated node %d", ErrCorrupt, i)
		}
		n := int(binary.LittleEndian.Uint32(raw[off:]))
		off += 4
		if n < 0 || len(raw)-off < n+4 {
			return nil, fmt.Errorf("%w: truncated node %d", ErrCorrupt, i)
		}
		model := make([]byte, n)
		copy(model, raw[off:off+n])
		off += n
		children := int32(binary.LittleEndian.Uint32(raw[off:]))
		off += 4
		if children < LeafChildren {
			return nil, fmt.Errorf("%w: node %d has %d children", ErrCorrupt, i, children)
		}
		nodes = append(nodes, NodeRecord{Model: model, Children: children})
	}
	if off != len(raw) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(raw)-off)
	}
	return nodes, nil
}
