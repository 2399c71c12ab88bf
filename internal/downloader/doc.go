// Package downloader connects the transfer engine to destination sinks.
//
// It drives pkg/client downloads into local files, arbitrary writers, or
// cloud storage objects (storage-agnostic via gocloud.dev/blob), with
// optional progress reporting.
//
// # Usage
//
//	err := downloader.ToFile(ctx, url, "out.bin", downloader.Options{
//	    Progress: true,
//	})
//
//	bucket, _ := blob.OpenBucket(ctx, "s3://my-bucket")
//	err = downloader.ToBucket(ctx, url, bucket, "objects/out.bin", downloader.Options{})
package downloader
