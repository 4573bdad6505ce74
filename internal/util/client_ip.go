package util

import (
	"net"
	"net/http"
	"strings"
)

// TrustedProxies is an allowlist of proxy addresses whose forwarded
// headers may be believed.
type TrustedProxies struct {
	ranges []*net.IPNet
}

// NewTrustedProxies parses a list of CIDR blocks or bare IPs.
// An empty list yields nil, meaning no proxy is trusted.
func NewTrustedProxies(entries []string) (*TrustedProxies, error) {
	ranges := make([]*net.IPNet, 0, len(entries))
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			_, block, err := net.ParseCIDR(entry)
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, block)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			return nil, &net.ParseError{Type: "IP address", Text: entry}
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		ranges = append(ranges, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	if len(ranges) == 0 {
		return nil, nil
	}
	return &TrustedProxies{ranges: ranges}, nil
}

// Contains reports whether ip falls inside any trusted range.
func (t *TrustedProxies) Contains(ip net.IP) bool {
	if t == nil || ip == nil {
		return false
	}
	for _, block := range t.ranges {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP resolves the caller address for rate limiting. Forwarded
// headers are honored only when the direct peer is a trusted proxy;
// otherwise the TCP peer address wins.
func ClientIP(r *http.Request, trusted *TrustedProxies) string {
	peer := parseHostIP(r.RemoteAddr)
	if peer == nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	if !trusted.Contains(peer) {
		return peer.String()
	}

	if chain := forwardedChain(r.Header.Get("X-Forwarded-For")); len(chain) > 0 {
		chain = append(chain, peer)
		// Walk right to left and stop at the first hop outside the
		// trusted ranges; that is the real client.
		for i := len(chain) - 1; i >= 0; i-- {
			if !trusted.Contains(chain[i]) {
				return chain[i].String()
			}
		}
		return chain[0].String()
	}

	if realIP := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); realIP != nil {
		return realIP.String()
	}
	return peer.String()
}

func forwardedChain(header string) []net.IP {
	parts := strings.Split(header, ",")
	chain := make([]net.IP, 0, len(parts))
	for _, part := range parts {
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			chain = append(chain, ip)
		}
	}
	return chain
}

func parseHostIP(addr string) net.IP {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return net.ParseIP(addr)
}
