// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// Uploads go through the transfer manager so large shard tables stream
// without buffering the whole object twice.
package s3
