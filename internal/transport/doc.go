// Package transport opens the byte channel a single HTTP exchange runs over.
//
// Every request gets a brand-new channel; channels are never pooled or
// reused. For the "https" scheme the channel is TLS-secured with the server
// name set to the target host, using an immutable *tls.Config that is built
// once and shared read-only across all dials.
//
// # Usage
//
//	d := transport.NewDialer(nil) // nil selects the shared default TLS config
//	conn, err := d.Dial(ctx, "https", "example.com", 443)
//	defer conn.Close()
package transport
