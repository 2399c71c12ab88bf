package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/WillDeJs/http-client/internal/config"
	"github.com/WillDeJs/http-client/internal/downloader"
)

func runDownload(args []string) int {
	fs := flag.NewFlagSet("download", flag.ExitOnError)

	configPath := fs.String("config", "", "YAML configuration file")
	output := fs.String("output", "", "Local output file path")
	bucket := fs.String("bucket", "", "Destination bucket URL (s3://, gs://, file://)")
	object := fs.String("object", "", "Destination object path within the bucket")
	blockSize := fs.String("block-size", "", "Maximum bytes per sub-request (e.g. 1MB)")
	userAgent := fs.String("user-agent", "", "User-Agent header override")
	showProgress := fs.Bool("progress", false, "Show progress output")
	overwrite := fs.Bool("overwrite", false, "Replace an existing destination object")
	var headers headerFlags
	fs.Var(&headers, "header", "Extra header 'Name: value' (repeatable)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: fetch download [options] <url>

Retrieve an HTTP(S) resource with bounded memory: sized resources are
fetched in sequential range windows, chunked resources in one exchange.
The destination is a local file (-output) or an object storage bucket
(-bucket plus -object).

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if *configPath != "" {
		fileCfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	override := config.Config{
		URL:       fs.Arg(0),
		Output:    *output,
		Bucket:    *bucket,
		Object:    *object,
		UserAgent: *userAgent,
		Progress:  *showProgress,
	}
	if *blockSize != "" {
		size, err := humanize.ParseBytes(*blockSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -block-size: %v\n", err)
			return ExitInvalidArgs
		}
		override.BlockSize = int64(size)
	}
	for _, h := range headers {
		name, value, _ := strings.Cut(h, ":")
		if override.Headers == nil {
			override.Headers = make(map[string]string)
		}
		override.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	cfg = cfg.Merge(override)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[fetch] Received interrupt, shutting down...")
		cancel()
	}()

	opts := downloader.Options{
		BlockSize: cfg.BlockSize,
		UserAgent: cfg.UserAgent,
		Headers:   cfg.Headers,
		Progress:  cfg.Progress,
		Overwrite: *overwrite,
	}

	if cfg.Bucket != "" {
		return downloadToBucket(ctx, cfg, opts)
	}

	if err := downloader.ToFile(ctx, cfg.URL, cfg.Output, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	fmt.Fprintf(os.Stderr, "[fetch] Download complete: %s\n", cfg.Output)
	return ExitSuccess
}

func downloadToBucket(ctx context.Context, cfg config.Config, opts downloader.Options) int {
	bucket, err := blob.OpenBucket(ctx, cfg.Bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bucket: %v\n", err)
		return ExitStorageError
	}
	defer bucket.Close()

	if err := downloader.ToBucket(ctx, cfg.URL, bucket, cfg.Object, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, downloader.ErrObjectExists) {
			return ExitStorageError
		}
		return exitCode(err)
	}
	fmt.Fprintf(os.Stderr, "[fetch] Download complete: %s/%s\n", cfg.Bucket, cfg.Object)
	return ExitSuccess
}
