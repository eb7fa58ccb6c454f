package util

import "strings"

// TrimHex trims the '0x' prefix from a hex string.
func TrimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// ShortHex returns a hex string abbreviated to its first and last n digits,
// for log lines.
func ShortHex(s string, n int) string {
	s = TrimHex(s)
	if len(s) <= 2*n {
		return "0x" + s
	}
	return "0x" + strings.Join([]string{s[:n], s[len(s)-n:]}, "..")
}
