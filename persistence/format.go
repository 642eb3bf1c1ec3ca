package persistence

import "errors"

const (
	// MagicNumber identifies tree files (ASCII: "HKM1").
	MagicNumber = 0x484B4D31
	// Version is the current file format version (v1.0.0).
	Version = 0x00010000

	// LeafChildren is the child count recorded for leaves.
	LeafChildren = -1

	headerSize = 64
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrCorrupt        = errors.New("corrupt tree file")
)

// FileHeader is the 64-byte header at the start of every tree file.
type FileHeader struct {
	Magic       uint32 // 0x484B4D31 ("HKM1")
	Version     uint32 // File format version
	Dim         uint32 // Vector dimensionality M
	K           uint32 // Nominal branching factor
	Depth       uint32 // Number of levels
	Method      uint8  // Clustering method selector
	FillPolicy  uint8  // Policy for unwritten path code slots
	Compression uint8  // CompressionType of the body
	Padding1    uint8
	NodeCount   uint64 // Number of node records in the body
	BodySize    uint64 // Stored body size in bytes
	RawSize     uint64 // Uncompressed body size in bytes
	Checksum    uint32 // CRC32 of the stored body
	Padding2    [12]byte
}

// NodeRecord is one node of the tree in preorder.
type NodeRecord struct {
	// Model is the encoded clustering model.
	Model []byte
	// Children is the number of child records that follow this node's
	// subtree in preorder, or LeafChildren for leaves.
	Children int32
}

// IsLeaf reports whether the record describes a leaf.
func (r NodeRecord) IsLeaf() bool {
	return r.Children == LeafChildren
}

// File is a decoded tree file.
type File struct {
	Header FileHeader
	Nodes  []NodeRecord
}
