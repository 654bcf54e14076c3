package translate

import (
	"strings"
	"unicode"
)

// A statement is an English sentence along with its lower-case version.
// Both have the same byte length, so that positions found in lower can be
// used to slice text.
type statement struct {
	text  string
	lower string
}

func newStatement(text string) statement {
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// Case folding changed byte lengths: work on the folded text only.
		text = lower
	}
	return statement{text: text, lower: lower}
}

// split returns the trimmed text before and after the first occurrence of sep.
func (s statement) split(sep string) (string, string, bool) {
	idx := strings.Index(s.lower, sep)
	if idx < 0 {
		return "", "", false
	}
	return clean(s.text[:idx]), clean(s.text[idx+len(sep):]), true
}

// conditional handles "if A is selected, B <tail>".
func (s statement) conditional(tail string, build func(a, b string) (string, bool)) (string, bool) {
	comma := strings.Index(s.text, ",")
	if comma < 0 || strings.Count(s.text, ",") != 1 {
		return "", false
	}
	head := statement{text: s.text[:comma], lower: s.lower[:comma]}
	rest := statement{text: s.text[comma+1:], lower: s.lower[comma+1:]}
	a := trimPrefixFold(clean(head.text), "if ")
	a = clean(removeFold(a, "is selected"))
	b := clean(removeFold(rest.text, tail))
	return build(a, b)
}

// around handles "... A <verb> B ...", using the words right before and after verb.
func (s statement) around(verb string, build func(a, b string) (string, bool)) (string, bool) {
	words := strings.Fields(s.text)
	for i, w := range words {
		if strings.ToLower(trimPunct(w)) != verb {
			continue
		}
		if i == 0 || i == len(words)-1 {
			return "", false
		}
		return build(trimPunct(words[i-1]), trimPunct(words[i+1]))
	}
	return "", false
}

// clean trims spaces and a trailing period.
func clean(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), "."))
}

func trimPunct(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) && r != '_' && r != '-'
	})
}

func trimPrefixFold(s, prefix string) string {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return strings.TrimSpace(s[len(prefix):])
	}
	return s
}

// removeFold removes every occurrence of sub in s, ignoring case.
// sub must be lower case.
func removeFold(s, sub string) string {
	lower := strings.ToLower(s)
	if len(lower) != len(s) {
		return strings.ReplaceAll(lower, sub, "")
	}
	var b strings.Builder
	for {
		idx := strings.Index(lower, sub)
		if idx < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:idx])
		s, lower = s[idx+len(sub):], lower[idx+len(sub):]
	}
}
