package cipher

import (
	"regexp"
	"strings"
)

// literalRule describes one kind of JS literal the scanner must skip over.
// Start/End are the delimiter runes; Prefix, when non-nil, must match the
// text immediately before the start delimiter for the rule to apply (used to
// tell a regex literal from a division operator).
type literalRule struct {
	Start  byte
	End    byte
	Prefix *regexp.Regexp
}

var literalRules = []literalRule{
	{Start: '"', End: '"'},
	{Start: '\'', End: '\''},
	{Start: '`', End: '`'},
	{Start: '/', End: '/', Prefix: regexp.MustCompile(`(^|[\[{:;,=(])\s*$`)},
}

// CutAfterJS returns the prefix of mixed that forms one balanced JS object,
// array, or function body, including both outer delimiters. The scan starts
// at the first '{' or '[' and tracks literal and escape state so bracket
// characters inside strings, template literals, regex literals, and block
// comments are ignored. Returns ok=false when the input never balances.
func CutAfterJS(mixed string) (string, bool) {
	var open, close byte
	switch {
	case strings.HasPrefix(mixed, "{"):
		open, close = '{', '}'
	case strings.HasPrefix(mixed, "["):
		open, close = '[', ']'
	default:
		return "", false
	}

	var inLiteral *literalRule
	escaped := false
	counter := 0

	for i := 0; i < len(mixed); i++ {
		ch := mixed[i]

		if inLiteral != nil {
			if !escaped && ch == inLiteral.End {
				inLiteral = nil
			} else {
				escaped = ch == '\\' && !escaped
			}
			continue
		}

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}

		if ch == '/' && i+1 < len(mixed) && mixed[i+1] == '*' {
			end := strings.Index(mixed[i+2:], "*/")
			if end < 0 {
				return "", false
			}
			i += 2 + end + 1
			continue
		}

		entered := false
		for r := range literalRules {
			rule := &literalRules[r]
			if ch != rule.Start {
				continue
			}
			if rule.Prefix != nil && !rule.Prefix.MatchString(mixed[:i]) {
				continue
			}
			inLiteral = rule
			entered = true
			break
		}
		if entered {
			continue
		}

		switch ch {
		case open:
			counter++
		case close:
			counter--
			if counter == 0 {
				return mixed[:i+1], true
			}
		}
	}

	return "", false
}

// between returns the substring of haystack strictly between the first
// occurrence of left and the first occurrence of right after it, or "" when
// either anchor is missing.
func between(haystack, left, right string) string {
	pos := strings.Index(haystack, left)
	if pos < 0 {
		return ""
	}
	pos += len(left)
	rest := haystack[pos:]
	end := strings.Index(rest, right)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
