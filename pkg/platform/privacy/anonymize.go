// Package privacy reduces personal data before it reaches logs, traces or events.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
)

// AnonymizeIP truncates an address to its network: IPv4 keeps the /24
// ("192.168.1.47" -> "192.168.1.0"), IPv6 keeps the /48 prefix.
// Returns "unknown" for empty input and "invalid" when the address does not parse.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}
	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// MaskIdentityNumber keeps the last three characters of an ID or passport number
// ("8001015009087" -> "**********087"). Values of three characters or fewer are fully masked.
func MaskIdentityNumber(v string) string {
	const visible = 3
	if len(v) <= visible {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-visible) + v[len(v)-visible:]
}

// HashIdentityNumber returns the first 16 hex characters of the SHA-256 of v.
// Enough to correlate spans for one document without revealing it.
func HashIdentityNumber(v string) string {
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])[:16]
}
