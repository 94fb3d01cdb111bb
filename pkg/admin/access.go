package admin

import (
	"fmt"
	"net"

	"github.com/bmatcuk/doublestar/v4"
)

// accessControl decides which client addresses may use the admin API.
type accessControl struct {
	localOnly bool
	patterns  []string
}

func newAccessControl(localOnly bool, patterns []string) (*accessControl, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ipWhitelist pattern %q", p)
		}
	}
	return &accessControl{localOnly: localOnly, patterns: patterns}, nil
}

// allowed reports whether a request from remoteAddr may proceed. Loopback
// clients are always allowed; the whitelist applies to everyone else.
func (c *accessControl) allowed(remoteAddr string) bool {
	host, ip := clientIP(remoteAddr)
	if ip != nil && ip.IsLoopback() {
		return true
	}
	if c.localOnly {
		return false
	}
	if len(c.patterns) == 0 {
		return true
	}
	for _, p := range c.patterns {
		if ok, _ := doublestar.Match(p, host); ok {
			return true
		}
	}
	return false
}

// clientIP extracts the client address from a RemoteAddr value. IPv4-mapped
// IPv6 addresses are reported in dotted form.
func clientIP(remoteAddr string) (string, net.IP) {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return host, nil
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.String(), v4
	}
	return ip.String(), ip
}
