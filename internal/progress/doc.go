// Package progress provides progress reporting for downloads.
//
// The reporter implements io.Writer so it can be teed into the byte stream
// flowing to a sink, and periodically prints completion percentage, transfer
// speed and ETA to stderr.
//
// # Output Format
//
//	[fetch] Downloading: https://example.com/file.tar.gz
//	[fetch] Total size: 2.5 GB | Block: 1.0 MB
//	[fetch] Progress: 45.2% | 1.1 GB / 2.5 GB | Speed: 120 MB/s | ETA: 12s
package progress
