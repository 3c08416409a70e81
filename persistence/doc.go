// Package persistence saves and loads shard-table snapshots through a
// blobstore.
//
// Snapshots are self-describing: a fixed header records the format version,
// the codec name, the compression algorithm, and a CRC32 checksum of the
// payload, so any snapshot can be opened without out-of-band configuration.
package persistence
