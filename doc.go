// Package streamrpc is a JSON-RPC 2.0 client for peers reached over a raw byte
// stream rather than a self-delimiting transport such as HTTP.
//
// The Client builds request and notification envelopes and hands their bytes
// to a Connector. Connectors own the transport: tcpconn frames responses on a
// TCP socket by tracking the nesting of the root JSON structure, httpconn
// relies on HTTP message boundaries. The Client depends only on the Connector
// interface.
//
// Only one call is in flight per Connector. Callers that need concurrency use
// one Connector per goroutine, or share one and accept that calls queue.
//
// Failures are returned as *Fault values whose Kind distinguishes
// configuration, connection, transport, framing-limit, capacity and
// validation problems. Nothing is retried internally.
//
// Example:
//
//	conn, err := tcpconn.New("tcp://localhost:8889")
//	if err != nil { log.Fatal(err) }
//	c := streamrpc.NewClient(conn, true)
//	var out int
//	if err := c.CallResult(ctx, "add", []int{1, 2}, &out); err != nil { log.Fatal(err) }
package streamrpc
