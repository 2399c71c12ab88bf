package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// rangeWindow is the span of a segmented fetch: the next byte wanted, the
// current upper bound of the request window, and the total resource size.
// Invariant: start <= end <= total, and start never decreases.
type rangeWindow struct {
	start int64
	end   int64
	total int64
}

// rangeValue encodes the window as a Range header value. The total is
// embedded after the span, matching the format the engine has always sent.
func (w rangeWindow) rangeValue() string {
	return fmt.Sprintf("bytes=%d-%d/%d", w.start, w.end, w.total)
}

// advance returns the window for the next iteration given the end of the
// span the server actually served. Using the served end rather than the
// requested one makes the loop self-correcting against servers that return
// a different span than asked for.
func (w rangeWindow) advance(servedEnd, blockSize int64) rangeWindow {
	next := rangeWindow{
		start: servedEnd + 1,
		end:   w.end + blockSize,
		total: w.total,
	}
	if next.end > w.total {
		next.end = w.total
	}
	return next
}

// parseContentRange extracts the (start, end, total) triple from a
// Content-Range value: the leading range-unit token is stripped, the rest is
// split on '-' and '/', and unparseable tokens are skipped. Fewer than three
// integers reports !ok.
func parseContentRange(v string) (start, end, total int64, ok bool) {
	v = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "bytes"))

	var nums []int64
	for _, tok := range strings.FieldsFunc(v, func(r rune) bool { return r == '-' || r == '/' }) {
		n, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 63)
		if err != nil {
			continue
		}
		nums = append(nums, int64(n))
	}
	if len(nums) < 3 {
		return 0, 0, 0, false
	}
	return nums[0], nums[1], nums[2], true
}

// downloadSized retrieves a resource of known total size into sink, bounding
// every response at the client block size.
//
// Resources no larger than one block are fetched with a single plain request
// carrying no Range header. Larger resources are fetched in a sequential
// window loop; each response must be 200 or 206 and carry a Content-Range
// describing the span actually served. The served span drives the window
// forward; the body length itself is not checked against it.
func (r *Request) downloadSized(ctx context.Context, total int64, sink io.Writer) error {
	if total <= r.client.blockSize {
		resp, err := r.client.roundTrip(ctx, r.endpoint, r.tmpl.Clone())
		if err != nil {
			return err
		}
		if _, err := sink.Write(resp.Body); err != nil {
			return fmt.Errorf("client: writing to sink: %w", err)
		}
		return nil
	}

	req := r.tmpl.Clone()
	window := rangeWindow{start: 0, end: total, total: total}

	var totalRead int64
	for totalRead < total {
		req.Header.Put("Range", window.rangeValue())

		resp, err := r.client.roundTrip(ctx, r.endpoint, req)
		if err != nil {
			return err
		}
		if resp.Status != http.StatusOK && resp.Status != http.StatusPartialContent {
			return &BadResponseError{Status: resp.Status, Message: resp.Reason}
		}

		cr, ok := resp.Header.Get("Content-Range")
		if !ok {
			return &BadResponseError{Status: resp.Status, Message: "missing expected header: Content-Range"}
		}
		servedStart, servedEnd, _, ok := parseContentRange(cr)
		if !ok {
			return &BadResponseError{
				Status:  resp.Status,
				Message: fmt.Sprintf("unsupported Content-Range value %q", cr),
			}
		}

		if _, err := sink.Write(resp.Body); err != nil {
			return fmt.Errorf("client: writing to sink: %w", err)
		}

		totalRead += servedEnd - servedStart + 1
		window = window.advance(servedEnd, r.client.blockSize)
	}

	return nil
}
