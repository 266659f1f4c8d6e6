// Package httpclient builds the *http.Client used by the crawler.
//
// The client carries a cookie jar, a redirect limit and, optionally, a
// SOCKS5 proxy. When a proxy is configured every connection goes through it,
// including DNS resolution of the target host.
//
// Design decision: We return a plain *http.Client rather than a wrapper type
// so the crawler and the tests can treat a proxied client and the client of
// an httptest.Server the same way.
package httpclient
