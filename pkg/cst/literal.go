package cst

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseLiteral converts literal source text to a Go value.
func ParseLiteral(text string) (any, bool) {
	t := strings.TrimSpace(text)
	switch ClassifyLiteral(t) {
	case LiteralNull:
		return nil, true
	case LiteralBoolean:
		return t == "true", true
	case LiteralInteger, LiteralLong:
		return parseInteger(strings.TrimRight(strings.ReplaceAll(t, "_", ""), "lL"))
	case LiteralFloat:
		digits := strings.TrimRight(strings.ReplaceAll(t, "_", ""), "fF")
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case LiteralChar:
		s, ok := unescape(strings.TrimSuffix(strings.TrimPrefix(t, "'"), "'"))
		if !ok || utf8.RuneCountInString(s) != 1 {
			return nil, false
		}
		r, _ := utf8.DecodeRuneInString(s)
		return r, true
	case LiteralString:
		return parseString(t)
	}
	return nil, false
}

func parseInteger(digits string) (any, bool) {
	base := 10
	lower := strings.ToLower(digits)
	switch {
	case strings.HasPrefix(lower, "0x"):
		base, digits = 16, digits[2:]
	case strings.HasPrefix(lower, "0b"):
		base, digits = 2, digits[2:]
	}
	n, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return nil, false
	}
	return n, true
}

func parseString(t string) (any, bool) {
	if strings.HasPrefix(t, `"""`) && strings.HasSuffix(t, `"""`) && len(t) >= 6 {
		body := t[3 : len(t)-3]
		if strings.Contains(body, "$") {
			return nil, false
		}
		return body, true
	}
	if len(t) < 2 || !strings.HasSuffix(t, `"`) {
		return nil, false
	}
	body := t[1 : len(t)-1]
	if IsTemplate(t) {
		return nil, false
	}
	v, ok := unescape(body)
	if !ok {
		return nil, false
	}
	return v, true
}

// IsTemplate reports whether a string literal contains an unescaped "$"
// followed by an identifier or a brace.
func IsTemplate(t string) bool {
	for i := 0; i < len(t)-1; i++ {
		switch t[i] {
		case '\\':
			i++
		case '$':
			next := t[i+1]
			if next == '{' || next == '_' || (next|0x20 >= 'a' && next|0x20 <= 'z') {
				return true
			}
		}
	}
	return false
}

func unescape(s string) (string, bool) {
	if !strings.Contains(s, `\`) {
		return s, true
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", false
		}
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '\'', '"', '\\', '$':
			b.WriteByte(s[i])
		case 'u':
			if i+4 >= len(s) {
				return "", false
			}
			n, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", false
			}
			b.WriteRune(rune(n))
			i += 4
		default:
			return "", false
		}
	}
	return b.String(), true
}
