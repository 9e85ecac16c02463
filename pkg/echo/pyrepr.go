package echo

import (
	"strings"

	"fauxhost/pkg/httpx"
)

// The non-JSON /echo_get body is a fixed string-formatting contract: the
// emulated service printed its internal mapping with Python's default dict
// stringification, and existing client tests assert on that exact text.
// legacyMapString reproduces it: single-quoted strings, ", " separators,
// insertion-ordered keys, "True" capitalization.

func legacyMapString(args, headers []httpx.KV, isPatch bool) string {
	var b strings.Builder
	b.WriteString("{'args': ")
	b.WriteString(legacyDict(args))
	b.WriteString(", 'headers': ")
	b.WriteString(legacyDict(headers))
	if isPatch {
		b.WriteString(", 'isPatch': True")
	}
	b.WriteByte('}')
	return b.String()
}

func legacyDict(pairs []httpx.KV) string {
	// Duplicate keys collapse like dict insertion: first position, last value.
	index := map[string]int{}
	var ordered []httpx.KV
	for _, kv := range pairs {
		if i, seen := index[kv.Key]; seen {
			ordered[i].Value = kv.Value
			continue
		}
		index[kv.Key] = len(ordered)
		ordered = append(ordered, kv)
	}

	if len(ordered) == 0 {
		return "{}"
	}

	var b strings.Builder
	b.WriteByte('{')
	for i, kv := range ordered {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(legacyString(kv.Key))
		b.WriteString(": ")
		b.WriteString(legacyString(kv.Value))
	}
	b.WriteByte('}')
	return b.String()
}

// legacyString mimics repr() quote selection: single quotes unless the value
// contains a single quote and no double quote.
func legacyString(s string) string {
	quote := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		quote = `"`
	}

	var b strings.Builder
	b.WriteString(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case string(r) == quote:
			b.WriteByte('\\')
			b.WriteString(quote)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(quote)
	return b.String()
}
