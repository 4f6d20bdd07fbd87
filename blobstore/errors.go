package blobstore

import "fmt"

// NotFoundError reports a missing blob. It matches ErrNotFound.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("blobstore: %s: %v", e.Name, ErrNotFound)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// OffsetError reports a negative read offset.
type OffsetError struct {
	Offset int64
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("blobstore: invalid offset %d", e.Offset)
}
