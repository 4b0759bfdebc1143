package ratelimiter

import (
	"hash/fnv"
	"net"
	"net/http"
	"strconv"
	"strings"
)

const maxKeyLength = 64

// KeyFunc derives a limiter key from a request. "" means do not limit.
type KeyFunc func(r *http.Request) string

// Composite joins the non-empty keys of fns with ":". Keys longer than 64
// bytes are replaced by their FNV-1a hash.
func Composite(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		if len(parts) == 0 {
			return ""
		}
		key := strings.Join(parts, ":")
		if len(key) > maxKeyLength {
			h := fnv.New64a()
			h.Write([]byte(key))
			return strconv.FormatUint(h.Sum64(), 36)
		}
		return key
	}
}

// Prefix is a constant key part.
func Prefix(p string) KeyFunc {
	return func(*http.Request) string { return p }
}

// ClientIP keys by the client address. With trustProxy the first valid
// address in CF-Connecting-IP, X-Forwarded-For or X-Real-IP wins; otherwise
// only RemoteAddr is used since those headers are client controlled.
func ClientIP(trustProxy bool) KeyFunc {
	return func(r *http.Request) string {
		if trustProxy {
			if ip := parseIP(r.Header.Get("CF-Connecting-IP")); ip != "" {
				return ip
			}
			for candidate := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
				if ip := parseIP(candidate); ip != "" {
					return ip
				}
			}
			if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
				return ip
			}
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return parseIP(r.RemoteAddr)
		}
		return parseIP(host)
	}
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
