// Package blobstore abstracts where serialized shard tables live.
//
// Shard tables are small (a few hundred records), so the interface is
// whole-blob: Put writes atomically, Get reads everything. Memory and local
// filesystem stores live here; S3 and MinIO backends live in subpackages.
package blobstore
