package endpoint

import "testing"

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want Endpoint
	}{
		{name: "scheme host port", url: "tcp://localhost:8889", want: Endpoint{Host: "localhost", Port: "8889"}},
		{name: "scheme host other port", url: "tcp://rpc.example.com:1234", want: Endpoint{Host: "rpc.example.com", Port: "1234"}},
		{name: "host only", url: "localhost", want: Endpoint{Host: "localhost", Port: DefaultPort}},
		{name: "host port no scheme", url: "10.0.0.1:7000", want: Endpoint{Host: "10.0.0.1", Port: "7000"}},
		{name: "non numeric port", url: "localhost:http", want: Endpoint{Host: "localhost", Port: DefaultPort}},
		{name: "zero port", url: "localhost:0", want: Endpoint{Host: "localhost", Port: DefaultPort}},
		{name: "trailing slash", url: "tcp://localhost/", want: Endpoint{Host: "localhost", Port: DefaultPort}},
		{name: "trailing colon", url: "localhost:", want: Endpoint{Host: "localhost", Port: DefaultPort}},
		{name: "port with path", url: "tcp://localhost:9000/rpc", want: Endpoint{Host: "localhost", Port: "9000"}},
		{name: "port with junk suffix", url: "localhost:80abc", want: Endpoint{Host: "localhost", Port: "80"}},
		{name: "leading zeros kept", url: "localhost:0080", want: Endpoint{Host: "localhost", Port: "0080"}},
		{name: "empty", url: "", want: Endpoint{Host: "", Port: DefaultPort}},
		{name: "scheme only", url: "tcp://", want: Endpoint{Host: "", Port: DefaultPort}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(tt.url)
			if got != tt.want {
				t.Fatalf("Resolve(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestResolveRoundTrip(t *testing.T) {
	t.Parallel()

	for _, url := range []string{"localhost:8889", "tcp://example.org:1", "127.0.0.1:65535", "host"} {
		first := Resolve(url)
		second := Resolve(first.String())
		if first != second {
			t.Fatalf("round trip of %q: %+v != %+v", url, first, second)
		}
	}
}

func TestEndpointIsZero(t *testing.T) {
	t.Parallel()

	if !Resolve("").IsZero() {
		t.Fatal("expected empty url to resolve to a zero endpoint")
	}
	if Resolve("localhost").IsZero() {
		t.Fatal("expected localhost to resolve to a non-zero endpoint")
	}
}

func TestDefaultURL(t *testing.T) {
	t.Parallel()

	got := Resolve(DefaultURL)
	if got.Host != "localhost" || got.Port != DefaultPort {
		t.Fatalf("unexpected default endpoint %+v", got)
	}
}
