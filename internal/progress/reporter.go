package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Options configures the progress reporter.
type Options struct {
	// TotalSize is the total size in bytes to download, or 0 when unknown
	// (chunked transfers).
	TotalSize int64

	// BlockSize is the window size of a segmented fetch (for display).
	BlockSize int64

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration

	// SourceURL is the URL being downloaded (for display).
	SourceURL string
}

// Reporter outputs human-readable progress information for a download.
// It implements io.Writer so it can be teed into the byte stream.
type Reporter struct {
	opts Options

	written atomic.Int64

	mu        sync.Mutex
	startTime time.Time
	lastBytes int64
	lastTime  time.Time
	stopCh    chan struct{}
	stopped   bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}
	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
	}
}

// Write counts bytes flowing to the sink. It never fails.
func (r *Reporter) Write(p []byte) (int, error) {
	r.written.Add(int64(len(p)))
	return len(p), nil
}

// Written returns the number of bytes counted so far.
func (r *Reporter) Written() int64 {
	return r.written.Load()
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	r.lastTime = r.startTime

	fmt.Fprintf(r.opts.Output, "[fetch] Downloading: %s\n", r.opts.SourceURL)
	if r.opts.TotalSize > 0 {
		fmt.Fprintf(r.opts.Output, "[fetch] Total size: %s | Block: %s\n",
			humanize.Bytes(uint64(r.opts.TotalSize)),
			humanize.Bytes(uint64(r.opts.BlockSize)),
		)
	} else {
		fmt.Fprintf(r.opts.Output, "[fetch] Total size: unknown (chunked transfer)\n")
	}

	go r.updateLoop()
}

// Stop stops the progress reporter and prints the final status.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
}

func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

func (r *Reporter) printProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	written := r.written.Load()

	elapsed := now.Sub(r.lastTime).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(written-r.lastBytes) / elapsed

	r.lastTime = now
	r.lastBytes = written

	if r.opts.TotalSize > 0 {
		percent := float64(written) / float64(r.opts.TotalSize) * 100
		eta := "calculating..."
		if speed > 0 {
			remaining := float64(r.opts.TotalSize - written)
			eta = formatDuration(time.Duration(remaining / speed * float64(time.Second)))
		}
		fmt.Fprintf(r.opts.Output, "\r[fetch] Progress: %.1f%% | %s / %s | Speed: %s/s | ETA: %s    ",
			percent,
			humanize.Bytes(uint64(written)),
			humanize.Bytes(uint64(r.opts.TotalSize)),
			humanize.Bytes(uint64(speed)),
			eta,
		)
		return
	}

	fmt.Fprintf(r.opts.Output, "\r[fetch] Progress: %s | Speed: %s/s    ",
		humanize.Bytes(uint64(written)),
		humanize.Bytes(uint64(speed)),
	)
}

func (r *Reporter) printFinalStatus() {
	written := r.written.Load()
	duration := time.Since(r.startTime)
	avgSpeed := float64(written) / duration.Seconds()

	fmt.Fprintf(r.opts.Output, "\r[fetch] Downloaded %s in %s | Average speed: %s/s\n",
		humanize.Bytes(uint64(written)),
		formatDuration(duration),
		humanize.Bytes(uint64(avgSpeed)),
	)
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
