package filter

import (
	"bufio"
	"fmt"
	"strings"
)

// Serialize renders the store as admin commands that rebuild it when
// replayed: "set filterban" first, then one add/ban/mute line per live entry
// in slot order. Expired and tombstoned slots are skipped and permanent
// entries carry no minutes field.
func Serialize(s *Store, filterBan bool, now Millis) []string {
	lines := make([]string, 0, s.count+1)
	lines = append(lines, fmt.Sprintf("set filterban %d", boolToInt(filterBan)))
	for i := 0; i < s.count; i++ {
		e := s.entries[i]
		if e.Expired(now) || e.Tombstoned() {
			continue
		}
		var line string
		switch e.Kind {
		case KindIdentity:
			if e.Mute {
				line = fmt.Sprintf("mute %d %d", e.ID, boolToInt(e.ShadowMute))
			} else {
				line = fmt.Sprintf("ban %d", e.ID)
			}
		case KindAddress:
			line = "addip " + FormatOctets(e.Compare)
		default:
			continue
		}
		if left, ok := e.RemainingMinutes(now); ok {
			line += fmt.Sprintf(" %.2f", left)
		}
		lines = append(lines, line)
	}
	return lines
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// EncodeScript joins command lines into the on-disk form, one CRLF-terminated
// command per line.
func EncodeScript(lines []string) []byte {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

// DecodeScript splits a script into trimmed, non-empty command lines.
// Both CRLF and LF line endings are accepted.
func DecodeScript(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
