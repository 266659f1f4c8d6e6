package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultMaxRedirects is the number of redirects followed before the last
// response is returned as is.
const DefaultMaxRedirects = 10

// checkProxyTimeout bounds the SOCKS5 handshake in CheckProxy.
const checkProxyTimeout = 2 * time.Second

type options struct {
	proxyAddress string
	tlsConfig    *tls.Config
	maxRedirects int
}

// Option configures the client built by New.
type Option func(*options)

// WithSOCKS5Proxy routes every connection through the SOCKS5 proxy at addr
// ("host:port"). An empty address disables proxying.
func WithSOCKS5Proxy(addr string) Option {
	return func(o *options) {
		o.proxyAddress = addr
	}
}

// WithTLSConfig sets the TLS configuration of the transport.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = cfg
	}
}

// WithMaxRedirects sets how many redirects are followed.
// Non-positive values keep DefaultMaxRedirects.
func WithMaxRedirects(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRedirects = n
		}
	}
}

// New creates an HTTP client with the given overall request timeout.
//
// Design decisions:
//   - A cookie jar is attached so that session cookies set by one page are
//     sent on the next request to the same site
//   - After the redirect limit the last response is returned instead of an
//     error, so the crawler records the 3xx status as a failed page
func New(timeout time.Duration, opts ...Option) (*http.Client, error) {
	o := &options{maxRedirects: DefaultMaxRedirects}
	for _, opt := range opts {
		opt(o)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	if o.tlsConfig != nil {
		transport.TLSClientConfig = o.tlsConfig
	}

	if o.proxyAddress != "" {
		if !IsValidProxyAddress(o.proxyAddress) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, o.proxyAddress)
		}
		// No auth: local SOCKS ports normally do not require it.
		dialer, err := proxy.SOCKS5("tcp", o.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = dialContext(dialer)
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	maxRedirects := o.maxRedirects
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// dialContext adapts a proxy.Dialer to http.Transport.DialContext.
// The SOCKS5 dialer from x/net supports contexts; other dialers are wrapped
// so that at least the caller stops waiting on cancellation.
func dialContext(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)

		go func() {
			conn, err := d.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()

		select {
		case result := <-resultCh:
			return result.conn, result.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// IsValidProxyAddress reports whether address is in "host:port" form with a
// non-empty host and a port between 1 and 65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// SOCKS5 protocol constants
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
)

// CheckProxy verifies that a SOCKS5 proxy is listening at address and
// accepts connections without authentication.
//
// Only the method negotiation is performed; no connection to a target host
// is requested, so the check never touches the network beyond the proxy.
func CheckProxy(ctx context.Context, address string) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Client sends: version + number of methods + methods
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	// Server responds: version + selected method
	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if authResp[0] != socks5Version {
		return ProxyStatusWrongType
	}
	if authResp[1] == socks5AuthNoAccept {
		// The proxy requires authentication.
		return ProxyStatusWrongType
	}
	if authResp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}

	return ProxyStatusOK
}
