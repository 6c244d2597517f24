// Package endpoint turns connector URLs of the form [scheme://]host[:port] into
// a host/port pair suitable for dialing.
//
// Resolution never fails. Malformed or missing ports fall back to DefaultPort
// and an empty host is reported through Endpoint.IsZero so the caller can treat
// the connector as not yet configured. Whether the host is actually reachable
// is decided later, at connect time.
package endpoint

import (
	"net"
	"strings"
)

const (
	// DefaultPort is used when the URL carries no usable port.
	DefaultPort = "8889"
	// DefaultURL is the endpoint a connector targets when none is configured.
	DefaultURL = "localhost:" + DefaultPort
)

const schemeSeparator = "://"

// Endpoint is a resolved host and numeric port.
type Endpoint struct {
	Host string
	Port string
}

// IsZero reports whether the endpoint has no host.
func (e Endpoint) IsZero() bool {
	return e.Host == ""
}

// String returns the dialable host:port form.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, e.Port)
}

// Resolve parses url into an Endpoint.
func Resolve(url string) Endpoint {
	hostStart := strings.Index(url, schemeSeparator)
	if hostStart < 0 {
		hostStart = 0
	} else {
		hostStart += len(schemeSeparator)
	}

	hostEnd := len(url)
	if i := strings.IndexAny(url[hostStart:], ":/"); i >= 0 {
		hostEnd = hostStart + i
	}

	return Endpoint{
		Host: url[hostStart:hostEnd],
		Port: parsePort(url, hostEnd),
	}
}

// parsePort reads the leading decimal digits following a ':' at hostEnd. A
// missing separator, an empty digit run or a zero value yields DefaultPort.
// Anything after the digit run is ignored.
func parsePort(url string, hostEnd int) string {
	if len(url) <= hostEnd+1 || url[hostEnd] != ':' {
		return DefaultPort
	}

	rest := url[hostEnd+1:]
	n := 0
	nonZero := false
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		if rest[n] != '0' {
			nonZero = true
		}
		n++
	}
	if n == 0 || !nonZero {
		return DefaultPort
	}
	return rest[:n]
}
