// Package string holds the small text helpers request types use in Sanitize/Normalize.
package string

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TrimStrings trims surrounding whitespace in place.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

// CollapseSpaces trims s and folds every inner whitespace run to a single space.
// "  Nomsa   van  der Merwe " becomes "Nomsa van der Merwe".
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Initials returns the upper-cased first letter of every word of names, without separators.
func Initials(names string) string {
	var b strings.Builder
	for _, w := range strings.Fields(names) {
		r := []rune(w)
		b.WriteRune(unicode.ToUpper(r[0]))
	}
	return b.String()
}

// Truncate cuts s to at most max bytes without splitting a multi-byte rune.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ToSnakeCase converts Go field names (AccountNumber, SAIDNumber) to snake_case.
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// SplitList splits a comma separated setting, trimming each element and dropping
// empties and repeats. Order is preserved.
//
//	SplitList(" kafka-1:9092, kafka-2:9092,,kafka-1:9092") // ["kafka-1:9092" "kafka-2:9092"]
func SplitList(v string) []string {
	parts := strings.Split(v, ",")
	seen := make(map[string]struct{}, len(parts))
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}
