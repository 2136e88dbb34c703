package services

import (
	"regexp"
	"strings"

	"github.com/gosha-popular/fstock-bot/models"
)

// unitRules rewrites Cyrillic unit-of-measure spellings to one canonical
// token, so "180г", "180 гр" and "180g" all compare equal. Go's RE2 \b is
// ASCII-only and never fires after a Cyrillic letter, hence the explicit
// "next rune is not a letter" tail. кг must run before г.
var unitRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)(\d+)\s*кг([^а-яёa-z]|$)`), "${1}kg${2}"},
	{regexp.MustCompile(`(?i)(\d+)\s*мл([^а-яёa-z]|$)`), "${1}ml${2}"},
	{regexp.MustCompile(`(?i)(\d+)\s*гр([^а-яёa-z]|$)`), "${1}g${2}"},
	{regexp.MustCompile(`(?i)(\d+)\s*г([^а-яёa-z]|$)`), "${1}g${2}"},
	{regexp.MustCompile(`(?i)(\d+)\s*шт([^а-яёa-z]|$)`), "${1}шт${2}"},
}

// normalizeUnits applies the unit rewrites and lowercases the result.
// Both candidate names and keywords go through it before matching.
func normalizeUnits(s string) string {
	for _, rule := range unitRules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	return strings.ToLower(s)
}

// Filter keeps records whose name contains every positive keyword and none
// of the negative keywords. Matching is case-insensitive and substring-based
// on purpose: "обезжиренное молоко" should match the query term "молоко".
func Filter(records []models.PriceRecord, positive, negative []string) []models.PriceRecord {
	pos := normalizeAll(positive)
	neg := normalizeAll(negative)

	var kept []models.PriceRecord
	for _, r := range records {
		name := normalizeUnits(r.Name)
		if containsAll(name, pos) && !containsAny(name, neg) {
			kept = append(kept, r)
		}
	}
	return kept
}

func normalizeAll(keywords []string) []string {
	result := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = normalizeUnits(kw)
		if kw != "" {
			result = append(result, kw)
		}
	}
	return result
}

func containsAll(name string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(name, kw) {
			return false
		}
	}
	return true
}

func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
