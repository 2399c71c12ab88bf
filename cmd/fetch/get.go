package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/WillDeJs/http-client/pkg/client"
)

// headerFlags collects repeated -header flags of the form "Name: value".
type headerFlags []string

func (h *headerFlags) String() string { return strings.Join(*h, ", ") }

func (h *headerFlags) Set(v string) error {
	if !strings.Contains(v, ":") {
		return fmt.Errorf("header must be of the form 'Name: value', got %q", v)
	}
	*h = append(*h, v)
	return nil
}

func runGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ExitOnError)

	method := fs.String("method", "GET", "HTTP method (GET, HEAD, POST, PUT, PATCH, DELETE, OPTIONS)")
	data := fs.String("data", "", "Request body")
	var headers headerFlags
	fs.Var(&headers, "header", "Extra header 'Name: value' (repeatable)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: fetch get [options] <url>

Perform a single request/response exchange and print the body to stdout.
Response status and headers go to stderr.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return ExitInvalidArgs
	}

	req, err := buildRequest(client.New(), *method, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	for _, h := range headers {
		name, value, _ := strings.Cut(h, ":")
		req.Header(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if *data != "" {
		req.Body([]byte(*data))
	}

	resp, err := req.Send(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	fmt.Fprintf(os.Stderr, "%d %s\n", resp.Status, resp.Reason)
	for _, f := range resp.Header.Fields() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", f.Name, f.Value)
	}
	os.Stdout.Write(resp.Body)

	return ExitSuccess
}

func buildRequest(c *client.Client, method, url string) (*client.Request, error) {
	switch strings.ToUpper(method) {
	case "GET":
		return c.Get(url)
	case "HEAD":
		return c.Head(url)
	case "POST":
		return c.Post(url)
	case "PUT":
		return c.Put(url)
	case "PATCH":
		return c.Patch(url)
	case "DELETE":
		return c.Delete(url)
	case "OPTIONS":
		return c.Options(url)
	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}
}

func exitCode(err error) int {
	var badResp *client.BadResponseError
	switch {
	case errors.As(err, &badResp):
		return ExitBadResponse
	case errors.Is(err, client.ErrConnection):
		return ExitConnection
	case errors.Is(err, client.ErrInvalidURL):
		return ExitInvalidArgs
	default:
		return ExitGeneralError
	}
}
