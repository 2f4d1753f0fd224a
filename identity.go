package tokengate

import (
	"net"
	"net/http"
	"strings"
)

// FallbackIdentity is used when no client address can be resolved from a
// request. The limiter requires a non-empty identity, so unresolvable
// clients all share this one bucket instead of bypassing accounting.
const FallbackIdentity = "127.0.0.1"

// ClientIdentity resolves the rate-limit identity of an HTTP request.
//
// It takes the first entry of X-Forwarded-For with any port stripped
// ("1.2.3.4:9999, 5.6.7.8" resolves to "1.2.3.4"), then X-Real-IP, then the
// host part of RemoteAddr, and finally FallbackIdentity. The returned value
// is an opaque key; the limiter never validates its format.
//
// Trust note: forwarded headers are client-controlled unless a trusted
// proxy sets them. Deployments not behind such a proxy should use a KeyFunc
// that reads RemoteAddr only.
func ClientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := fwd
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			first = fwd[:i]
		}
		if ip := stripPort(strings.TrimSpace(first)); ip != "" {
			return ip
		}
	}

	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		if ip := stripPort(real); ip != "" {
			return ip
		}
	}

	if ip := stripPort(r.RemoteAddr); ip != "" {
		return ip
	}

	return FallbackIdentity
}

// stripPort removes a trailing :port from addr if one is present, handling
// bracketed IPv6 addresses. Addresses without a port pass through unchanged.
func stripPort(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	// No port. Unwrap a bare bracketed IPv6 literal.
	return strings.Trim(addr, "[]")
}

// UserIdentity builds a rate-limit identity from an authenticated user id.
// Prefer it over IP identity once a session exists, so a user's quota
// follows them across networks.
func UserIdentity(userID string) string {
	if userID == "" {
		return FallbackIdentity
	}
	return "user:" + userID
}
