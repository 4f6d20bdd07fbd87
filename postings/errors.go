package postings

import "errors"

var (
	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("postings: store is closed")

	// ErrInvalidName is returned for bitmap names that cannot be stored.
	ErrInvalidName = errors.New("postings: invalid name")

	// ErrNoCatalog is returned by Catalog before the first Commit.
	ErrNoCatalog = errors.New("postings: no committed catalog")

	// ErrNoOperands is returned by queries called without names.
	ErrNoOperands = errors.New("postings: query needs at least one name")
)
