// Package mmap provides read-only memory-mapped file access.
//
// It backs blobstore.LocalStore so saved trees are read without copying
// through kernel buffers.
//
//	m, err := mmap.Open("vocab.hkm")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// Unix uses mmap(2) with madvise(2) hints; Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints.
package mmap
