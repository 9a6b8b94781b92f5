package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIPIgnoresForwardingHeaders(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/create-order", nil)
	r.RemoteAddr = "198.51.100.7:52100"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	r.Header.Set("X-Real-IP", "5.6.7.8")
	require.Equal(t, "198.51.100.7", ClientIP(r))
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.10 ", ""})
	require.NoError(t, err)
	require.Len(t, proxies, 2)
	require.True(t, proxies.contains("10.1.2.3"))
	require.True(t, proxies.contains("192.0.2.10"))
	require.False(t, proxies.contains("192.0.2.11"))

	_, err = ParseTrustedProxies([]string{"lb.internal"})
	require.Error(t, err)
}

func TestTrustedProxiesResolve(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		remote string
		xff    string
		realIP string
		want   string
	}{
		{"untrusted peer keeps its own address", "203.0.113.9:4000", "1.2.3.4", "", "203.0.113.9"},
		{"trusted peer forwards client", "10.0.0.2:4000", "198.51.100.7", "", "198.51.100.7"},
		{"spoofed leading hop is skipped", "10.0.0.2:4000", "1.2.3.4, 198.51.100.7", "", "198.51.100.7"},
		{"trusted hops are walked past", "10.0.0.2:4000", "198.51.100.7, 10.0.0.5", "", "198.51.100.7"},
		{"real ip header from trusted peer", "10.0.0.2:4000", "", "198.51.100.8", "198.51.100.8"},
		{"garbage header falls back to peer", "10.0.0.2:4000", "not-an-ip", "", "10.0.0.2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-IP", tc.realIP)
			}
			require.Equal(t, tc.want, proxies.Resolve(r))
		})
	}
}

func TestTrustedProxiesRealIPMiddleware(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	var seen string
	h := proxies.RealIP(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = ClientIP(r)
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:4000"
	r.Header.Set("X-Forwarded-For", "198.51.100.7")
	h.ServeHTTP(httptest.NewRecorder(), r)
	require.Equal(t, "198.51.100.7", seen)
}
