package streamrpc

import "context"

// Connector moves one serialized envelope to the peer and returns the peer's
// serialized reply. Implementations live in tcpconn (raw byte stream) and
// httpconn.
//
// A Connector carries at most one exchange at a time.
type Connector interface {
	// SendMessage writes request and blocks until one complete response
	// document has been received. Failures are returned as *Fault.
	SendMessage(ctx context.Context, request []byte) ([]byte, error)

	// Configure points the connector at url. It fails with a configuration
	// fault when the url yields an empty host.
	Configure(url string) error
}

// Notifier is implemented by connectors that can deliver a message without
// waiting for a reply.
type Notifier interface {
	SendNotification(ctx context.Context, request []byte) error
}
