package common

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the host part of the request's peer address. Forwarding
// headers are only reflected here after TrustedProxies.RealIP rewrote it.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// TrustedProxies is the set of peers allowed to report the client address
// through X-Forwarded-For or X-Real-IP.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies accepts addresses and CIDR prefixes.
func ParseTrustedProxies(values []string) (TrustedProxies, error) {
	out := make(TrustedProxies, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			prefix, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
			}
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func (t TrustedProxies) contains(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range t {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Resolve returns the client address for r. Headers are ignored unless the
// peer is trusted; X-Forwarded-For is then walked from the right, skipping
// trusted hops, so a client cannot choose its own address by prepending.
func (t TrustedProxies) Resolve(r *http.Request) string {
	peer := ClientIP(r)
	if !t.contains(peer) {
		return peer
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			if !t.contains(hop) {
				return hop
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		if _, err := netip.ParseAddr(realIP); err == nil {
			return realIP
		}
	}
	return peer
}

// RealIP rewrites RemoteAddr to the resolved client address so logging and
// rate limiting see the same value.
func (t TrustedProxies) RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(t) > 0 {
			if ip := t.Resolve(r); ip != "" {
				r.RemoteAddr = ip
			}
		}
		next.ServeHTTP(w, r)
	})
}

// NotFound renders the canonical error envelope for unmatched routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	JSONError(w, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
}

// MethodNotAllowed renders the canonical error envelope for unsupported methods.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	JSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
}
