package programmap

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText performs Unicode normalization, trims and collapses whitespace.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = norm.NFKC.String(text)
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeToken returns the vocabulary form of an attribute value: trimmed
// and lower-cased, otherwise verbatim.
func NormalizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return foldCase(value)
}

// FoldToken is NormalizeToken after NFKC normalization and whitespace
// collapsing, so "ＥＲＰ" and "ERP" or "Machine  Learning" and
// "machine learning" share one token.
func FoldToken(value string) string {
	normed := NormalizeText(value)
	if normed == "" {
		return ""
	}
	return foldCase(normed)
}

// foldCase lower-cases language-neutrally. A Caser carries state, so one is
// built per call instead of shared.
func foldCase(s string) string {
	return cases.Lower(language.Und).String(s)
}
