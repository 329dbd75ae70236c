package mcp

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	writePattern      = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|truncate|merge|grant|revoke|exec|execute|sp_executesql)\b`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$#@]*$`)
	selectPattern     = regexp.MustCompile(`(?i)^\s*select(\s+distinct)?\s+`)
	topPattern        = regexp.MustCompile(`(?i)^top\b`)
)

// validateReadOnly rejects statements carrying write keywords. String
// literals, comments and bracketed identifiers are stripped before scanning.
// Advisory only: a read-only database login is the real boundary.
func validateReadOnly(query string) error {
	if m := writePattern.FindString(stripLiterals(query)); m != "" {
		return fmt.Errorf("query rejected: %s statements are not allowed, only read statements are accepted", strings.ToUpper(m))
	}
	return nil
}

// stripLiterals blanks out 'strings', [bracketed identifiers], -- line
// comments and /* block comments */. Each skipped span is replaced with a
// single space so tokens on either side never merge into a new word.
func stripLiterals(query string) string {
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); {
		switch {
		case query[i] == '\'':
			i = skipDelimited(query, i, '\'')
			b.WriteByte(' ')
		case query[i] == '[':
			i = skipDelimited(query, i, ']')
			b.WriteByte(' ')
		case strings.HasPrefix(query[i:], "--"):
			for i < len(query) && query[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case strings.HasPrefix(query[i:], "/*"):
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 4
			b.WriteByte(' ')
		default:
			b.WriteByte(query[i])
			i++
		}
	}
	return b.String()
}

// skipDelimited returns the index past a span opened at start and closed by
// closer. A doubled closer ('' or ]]) is an escape, not a terminator.
func skipDelimited(query string, start int, closer byte) int {
	i := start + 1
	for i < len(query) {
		if query[i] == closer {
			if i+1 < len(query) && query[i+1] == closer {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// quoteName renders a bracket-quoted identifier.
func quoteName(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func escapeLiteral(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

// ensureRowLimit injects TOP (limit) into a plain SELECT that does not
// already carry one. Anything else passes through untouched.
func ensureRowLimit(query string, limit int) string {
	if limit <= 0 {
		return query
	}
	head := selectPattern.FindString(query)
	if head == "" {
		return query
	}
	rest := query[len(head):]
	if topPattern.MatchString(rest) {
		return query
	}
	return fmt.Sprintf("%sTOP (%d) %s", head, limit, rest)
}
