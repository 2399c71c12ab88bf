package client

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// rangeServer serves data over HTTP, capping every range response at
// maxPerRequest bytes and counting GET exchanges.
func rangeServer(t *testing.T, data []byte, maxPerRequest int64, gets *atomic.Int64) *httptest.Server {
	t.Helper()

	size := int64(len(data))

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
			return
		}
		if gets != nil {
			gets.Add(1)
		}

		rangeHeader := r.Header.Get("Range")
		if rangeHeader == "" {
			w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
			w.Write(data)
			return
		}

		// Range format: bytes=start-end/total (total ignored)
		rangeHeader = strings.TrimPrefix(rangeHeader, "bytes=")
		span, _, _ := strings.Cut(rangeHeader, "/")
		parts := strings.Split(span, "-")
		start, _ := strconv.ParseInt(parts[0], 10, 64)
		end, _ := strconv.ParseInt(parts[1], 10, 64)

		if end >= size {
			end = size - 1
		}
		if maxPerRequest > 0 && end-start+1 > maxPerRequest {
			end = start + maxPerRequest - 1
		}

		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
		w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(data[start : end+1])
	}))
}

// scriptedServer answers each incoming connection with the next canned
// response and closes it, for exchanges the net/http server cannot produce.
func scriptedServer(t *testing.T, responses ...string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for _, resp := range responses {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			br := bufio.NewReader(conn)
			for {
				line, err := br.ReadString('\n')
				if err != nil || line == "\r\n" {
					break
				}
			}
			io.WriteString(conn, resp)
			conn.Close()
		}
	}()

	return fmt.Sprintf("http://%s/file", ln.Addr().String())
}

func TestProbeSized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if r.ContentLength > 0 {
			t.Error("probe request should carry no body")
		}
		w.Header().Set("Content-Length", "1024")
	}))
	defer server.Close()

	req, err := New().Get(server.URL + "/file")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	req.Body([]byte("leftover template body"))

	class, err := req.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if class.Chunked {
		t.Error("expected a sized classification")
	}
	if class.Size != 1024 {
		t.Errorf("expected size 1024, got %d", class.Size)
	}
}

func TestProbeChunked(t *testing.T) {
	url := scriptedServer(t,
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n",
	)

	req, err := New().Get(url)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	class, err := req.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !class.Chunked {
		t.Error("expected a chunked classification")
	}
}

func TestProbeNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	req, err := New().Get(server.URL + "/missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, err = req.Probe(context.Background())
	var badResp *BadResponseError
	if !errors.As(err, &badResp) {
		t.Fatalf("expected BadResponseError, got %v", err)
	}
	if badResp.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", badResp.Status)
	}
}

func TestProbeUndeterminable(t *testing.T) {
	url := scriptedServer(t,
		"HTTP/1.1 200 OK\r\n\r\n",
	)

	req, err := New().Get(url)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, err = req.Probe(context.Background())
	var badResp *BadResponseError
	if !errors.As(err, &badResp) {
		t.Fatalf("expected BadResponseError, got %v", err)
	}
	if !strings.Contains(badResp.Message, "cannot determine resource size") {
		t.Errorf("unexpected message %q", badResp.Message)
	}
}

func TestProbeMalformedContentLength(t *testing.T) {
	url := scriptedServer(t,
		"HTTP/1.1 200 OK\r\nContent-Length: banana\r\n\r\n",
	)

	req, err := New().Get(url)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, err = req.Probe(context.Background())
	if !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestDownloadSmall(t *testing.T) {
	data := testData(1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			return
		}
		if r.Header.Get("Range") != "" {
			t.Errorf("single-block fetch should not carry a Range header, got %q", r.Header.Get("Range"))
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
	}))
	defer server.Close()

	req, err := New().Get(server.URL + "/file")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	body, err := req.Download(context.Background())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !bytes.Equal(body, data) {
		t.Errorf("downloaded %d bytes, want %d, content mismatch", len(body), len(data))
	}
}

func TestDownloadSegmented(t *testing.T) {
	data := testData(2_500_000)
	var gets atomic.Int64
	server := rangeServer(t, data, DefaultBlockSize, &gets)
	defer server.Close()

	req, err := New().Get(server.URL + "/file")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	body, err := req.Download(context.Background())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !bytes.Equal(body, data) {
		t.Fatalf("downloaded %d bytes, want %d, content mismatch", len(body), len(data))
	}
	if n := gets.Load(); n != 3 {
		t.Errorf("expected 3 range exchanges, got %d", n)
	}
}

func TestDownloadSegmentedShortServes(t *testing.T) {
	// Server caps responses below the client block size; the loop must
	// advance from the span actually served.
	data := testData(1000)
	var gets atomic.Int64
	server := rangeServer(t, data, 100, &gets)
	defer server.Close()

	req, err := New(WithBlockSize(400)).Get(server.URL + "/file")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	body, err := req.Download(context.Background())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !bytes.Equal(body, data) {
		t.Fatalf("downloaded %d bytes, want %d, content mismatch", len(body), len(data))
	}
	if n := gets.Load(); n != 10 {
		t.Errorf("expected 10 range exchanges, got %d", n)
	}
}

func TestDownloadRepeatable(t *testing.T) {
	data := testData(2500)
	server := rangeServer(t, data, 1000, nil)
	defer server.Close()

	req, err := New(WithBlockSize(1000)).Get(server.URL + "/file")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	for i := 0; i < 2; i++ {
		body, err := req.Download(context.Background())
		if err != nil {
			t.Fatalf("Download #%d: %v", i+1, err)
		}
		if !bytes.Equal(body, data) {
			t.Fatalf("Download #%d: content mismatch", i+1)
		}
	}
}

func TestDownloadErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "2500000")
			return
		}
		http.Error(w, "tea time", http.StatusTeapot)
	}))
	defer server.Close()

	req, err := New().Get(server.URL + "/file")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, err = req.Download(context.Background())
	var badResp *BadResponseError
	if !errors.As(err, &badResp) {
		t.Fatalf("expected BadResponseError, got %v", err)
	}
	if badResp.Status != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", badResp.Status)
	}
}

func TestDownloadMissingContentRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "2500000")
			return
		}
		w.Header().Set("Content-Length", "4")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("body"))
	}))
	defer server.Close()

	req, err := New().Get(server.URL + "/file")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, err = req.Download(context.Background())
	var badResp *BadResponseError
	if !errors.As(err, &badResp) {
		t.Fatalf("expected BadResponseError, got %v", err)
	}
	if !strings.Contains(badResp.Message, "Content-Range") {
		t.Errorf("message should name the missing header, got %q", badResp.Message)
	}
}

func TestDownloadUnsupportedContentRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "2500000")
			return
		}
		w.Header().Set("Content-Range", "bytes */2500000")
		w.Header().Set("Content-Length", "4")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("body"))
	}))
	defer server.Close()

	req, err := New().Get(server.URL + "/file")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, err = req.Download(context.Background())
	var badResp *BadResponseError
	if !errors.As(err, &badResp) {
		t.Fatalf("expected BadResponseError, got %v", err)
	}
	if !strings.Contains(badResp.Message, "bytes */2500000") {
		t.Errorf("message should quote the rejected value, got %q", badResp.Message)
	}
}

func TestDownloadChunked(t *testing.T) {
	url := scriptedServer(t,
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n",
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\nConnection: close\r\n\r\n"+
			"5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n",
	)

	req, err := New().Get(url)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	body, err := req.Download(context.Background())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(body) != "hello world" {
		t.Errorf("body = %q, want %q", body, "hello world")
	}
}

func TestDownloadTo(t *testing.T) {
	data := testData(250)
	var gets atomic.Int64
	server := rangeServer(t, data, 100, &gets)
	defer server.Close()

	req, err := New(WithBlockSize(100)).Get(server.URL + "/file")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	var sink bytes.Buffer
	if err := req.DownloadTo(context.Background(), &sink); err != nil {
		t.Fatalf("DownloadTo: %v", err)
	}
	if !bytes.Equal(sink.Bytes(), data) {
		t.Errorf("sink holds %d bytes, want %d, content mismatch", sink.Len(), len(data))
	}
	if n := gets.Load(); n != 3 {
		t.Errorf("expected 3 range exchanges, got %d", n)
	}
}

func TestDownloadToChunked(t *testing.T) {
	url := scriptedServer(t,
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n",
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\nConnection: close\r\n\r\n"+
			"3\r\nabc\r\n0\r\n\r\n",
	)

	req, err := New().Get(url)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	var sink bytes.Buffer
	if err := req.DownloadTo(context.Background(), &sink); err != nil {
		t.Fatalf("DownloadTo: %v", err)
	}
	if sink.String() != "abc" {
		t.Errorf("sink = %q, want %q", sink.String(), "abc")
	}
}

func TestSendPostForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	}))
	defer server.Close()

	req, err := New().Post(server.URL + "/submit")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	req.FormData("name", "gopher").FormData("note", "two words")

	resp, err := req.Send(context.Background())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if got := string(resp.Body); got != "name=gopher&note=two+words" {
		t.Errorf("echoed body = %q", got)
	}
}

func TestDefaultHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "http-client/1.0" {
			t.Errorf("unexpected User-Agent %q", ua)
		}
		if r.Host == "" {
			t.Error("expected a Host header")
		}
	}))
	defer server.Close()

	req, err := New().Get(server.URL + "/")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := req.Send(context.Background()); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestCustomUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "probe/2.0" {
			t.Errorf("unexpected User-Agent %q", ua)
		}
	}))
	defer server.Close()

	req, err := New(WithUserAgent("probe/2.0")).Get(server.URL + "/")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := req.Send(context.Background()); err != nil {
		t.Fatalf("Send: %v", err)
	}
}
