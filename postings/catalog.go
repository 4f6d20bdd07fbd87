package postings

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// CurrentName is the blob holding the name of the committed catalog.
	CurrentName = "CURRENT"

	// CatalogVersion is the catalog format written by Commit.
	CatalogVersion = 1

	catalogPrefix = "catalog-"
	bitmapDir     = "bitmaps/"
)

// Catalog describes the bitmaps of a Store at commit time.
type Catalog struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	WordWidth int       `json:"word_width"`
	Entries   []Entry   `json:"entries"`
}

// Entry describes one stored bitmap.
type Entry struct {
	Name        string `json:"name"`
	Cardinality int    `json:"cardinality"`
	SizeInBits  int    `json:"size_in_bits"`
	Bytes       int    `json:"bytes"`
	Compression string `json:"compression"`
	Checksum    uint32 `json:"checksum"`
}

// Lookup returns the entry for name. Entries are sorted by name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := slices.BinarySearchFunc(c.Entries, name, func(e Entry, name string) int {
		return strings.Compare(e.Name, name)
	})
	if !ok {
		return Entry{}, false
	}
	return c.Entries[i], true
}

// Names returns the entry names in ascending order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		names[i] = e.Name
	}
	return names
}

// ValidateName reports whether name can be used for a stored bitmap.
// Names are non-empty UTF-8 of at most 512 bytes without path separators or
// control characters. "." and ".." are reserved.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || len(name) > 512 || !utf8.ValidString(name) {
		return invalidName(name)
	}
	for _, r := range name {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return invalidName(name)
		}
	}
	return nil
}
