// Package cache provides a byte-bounded LRU for immutable blob contents.
//
// blobstore.CachingStore keeps recently opened blobs in an LRU so that
// repeated loads of hot posting lists from a remote store are served from
// memory. Entries are keyed by blob name and charged by their length.
package cache
