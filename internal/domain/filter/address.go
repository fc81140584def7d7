package filter

import "fmt"

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ParsePattern reads up to four dot-separated decimal octets. A zero octet,
// and every octet after the pattern ends, is a wildcard, so "192.246.40"
// covers the whole 192.246.40.x network. Parsing stops at the end of the
// text or at a ':' suffix. Octet values wrap modulo 256.
func ParsePattern(s string) (mask, compare [4]byte, err error) {
	p := 0
	for i := 0; i < 4; i++ {
		if p >= len(s) || !isDigit(s[p]) {
			return [4]byte{}, [4]byte{}, fmt.Errorf("%w: %q", ErrInvalidOctet, s[p:])
		}
		var b byte
		for p < len(s) && isDigit(s[p]) {
			b = b*10 + (s[p] - '0')
			p++
		}
		compare[i] = b
		if b != 0 {
			mask[i] = 255
		}
		if p >= len(s) || s[p] == ':' {
			break
		}
		p++
	}
	return mask, compare, nil
}

// ParseCandidate reads the address of a connecting peer. It never fails:
// non-digit characters are skipped one at a time, unreached octets stay 0
// and anything from ':' on is ignored.
func ParseCandidate(s string) [4]byte {
	var addr [4]byte
	p, i := 0, 0
	for p < len(s) && i < 4 {
		var b byte
		for p < len(s) && isDigit(s[p]) {
			b = b*10 + (s[p] - '0')
			p++
		}
		addr[i] = b
		if p >= len(s) || s[p] == ':' {
			break
		}
		i++
		p++
	}
	return addr
}

// MatchAddress tests a candidate against a stored pattern. Only the pattern
// mask is applied; the candidate is compared as parsed.
func MatchAddress(candidate, mask, compare [4]byte) bool {
	for i := range candidate {
		if candidate[i]&mask[i] != compare[i] {
			return false
		}
	}
	return true
}

// FormatOctets renders address bytes as a dotted quad.
func FormatOctets(b [4]byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}
