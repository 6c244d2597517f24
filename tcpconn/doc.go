// Package tcpconn implements streamrpc.Connector over a raw TCP byte stream.
//
// The stream carries no length prefix, so the connector reads into a
// fixed-capacity buffer and asks a structural framing detector after every
// read whether the JSON document begun by the response is complete.
//
// Characteristics
//
//	Connection model : one socket per Connector, opened lazily on first use
//	Addressing       : every resolved candidate address is tried in order
//	Failures         : any fault during an exchange closes the socket
//	Concurrency      : exchanges are serialized; Close may be called anytime
//	Response size    : bounded by the configured buffer capacity
//
// Known limitations: the detector does not understand string literals, and
// bytes received after the end of a response in the same read are discarded.
//
// Example:
//
//	conn, err := tcpconn.New("tcp://localhost:8889")
//	if err != nil { log.Fatal(err) }
//	defer conn.Close()
//	c := streamrpc.NewClient(conn, true)
//	resp, err := c.Call(ctx, "ping", []any{1})
package tcpconn
