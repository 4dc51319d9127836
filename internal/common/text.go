package common

import "unicode/utf8"

// TruncatedSuffix marks a value cut by Truncate.
const TruncatedSuffix = "...(truncated)"

// Truncate caps s at n bytes without splitting a UTF-8 rune and appends
// TruncatedSuffix when anything was cut. n <= 0 returns s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + TruncatedSuffix
}
