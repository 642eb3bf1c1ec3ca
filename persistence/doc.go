// Package persistence encodes trained trees into a compact binary file.
//
// A file is a fixed-size little-endian FileHeader followed by a body. The
// body is the preorder sequence of node records, each carrying the node's
// encoded clustering model and its child count (-1 for leaves). The body may
// be compressed with LZ4 or ZSTD; the header stores a CRC32 of the stored
// body bytes so corruption is detected before decoding.
package persistence
