// Package mmap maps files read-only into memory.
//
// Dataset files and locally stored graph blobs are read through a Mapping,
// which exposes the file contents as a byte slice without copying them
// through kernel buffers.
//
//	m, err := mmap.Open("base.fvecs")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// On Unix the package uses mmap(2) and madvise(2) from golang.org/x/sys/unix;
// on Windows it uses file mappings and Advise is a no-op.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch slices returned by Bytes after Close.
package mmap
