// Package client implements a bounded-memory HTTP(S) transfer engine.
//
// The engine retrieves resources of unknown size while keeping peak memory
// bounded, and survives range-serving servers that only expose partial
// content per request. A download first probes the resource with a HEAD
// exchange to classify it as sized or chunked, then either drives a
// sequential loop of range-scoped requests (sized) or issues a single
// request and relies on chunked transfer decoding (chunked).
//
// Every request opens a fresh transport channel; there is no connection
// reuse, no retry, and no partial-result salvage. The first failure aborts
// the whole operation and is surfaced verbatim.
//
// # Usage
//
//	c := client.New()
//
//	req, err := c.Get("https://example.com/video.mp4")
//	if err != nil {
//		return err
//	}
//	f, _ := os.Create("video.mp4")
//	defer f.Close()
//	if err := req.DownloadTo(ctx, f); err != nil {
//		return err
//	}
//
// Form submissions use the builder directly:
//
//	req, _ := c.Post("https://example.com/login_action")
//	resp, err := req.
//		FormData("email", "test@mail.com").
//		FormData("password", "password").
//		Send(ctx)
package client
