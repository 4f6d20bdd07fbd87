// Package mmap maps local files read-only into memory.
//
// blobstore.LocalStore serves reads of stored bitmaps from a Mapping, so a
// loaded bitmap is decoded straight from the page cache:
//
//	m, err := mmap.Open("postings/title.ewah")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix platforms use mmap(2) with madvise(2) hints. Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but slices
// returned by Bytes must not be used after it.
package mmap
