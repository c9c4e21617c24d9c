package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	apperrors "clubhouse/pkg/errors"
	httputil "clubhouse/pkg/http"
)

type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	HeaderRequestID            = "X-Request-ID"
)

func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// ClientAddress returns the host part of RemoteAddr. Forwarding headers are
// ignored; use TrustedClientAddress behind a proxy.
func ClientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// TrustedClientAddress resolves the client behind the given proxies. The
// X-Forwarded-For chain is read only when the direct peer is a trusted proxy,
// and then walked from the right past every trusted hop. Entries are IPs or
// CIDR prefixes; malformed entries are skipped.
func TrustedClientAddress(proxies []string) KeyExtractor {
	trusted := parseProxies(proxies)
	if len(trusted) == 0 {
		return ClientAddress
	}
	isTrusted := func(host string) bool {
		addr, err := netip.ParseAddr(host)
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		for _, p := range trusted {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(r *http.Request) string {
		peer := ClientAddress(r)
		if !isTrusted(peer) {
			return peer
		}
		hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !isTrusted(hop) {
				return hop
			}
		}
		return peer
	}
}

func parseProxies(proxies []string) []netip.Prefix {
	var out []netip.Prefix
	for _, raw := range proxies {
		raw = strings.TrimSpace(raw)
		if p, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(raw); err == nil {
			a = a.Unmap()
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
		}
	}
	return out
}

func reject(w http.ResponseWriter, status int, code, message string) {
	httputil.WriteError(w, apperrors.New(code, message, status))
}
