package lastfm

import (
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// Words that mark a parenthetical as packaging noise rather than part of the
// title ("(Remastered 2011)", "[Radio Edit]", ...).
var noiseWords = []string{
	"acoustic", "bonus", "clean", "demo", "edit", "explicit", "extended",
	"instrumental", "karaoke", "live", "mix", "mono", "official", "original",
	"radio", "remaster", "remastered", "remix", "remixed", "session", "single",
	"stereo", "version", "ver",
}

const symbolRunes = "1234567890!@#$%^&*()-=_+[]{};\"|;'\\<>?/.,~`"

// MetadataCleaner strips featuring credits and noisy parentheticals from
// track names before they are sent to the provider as search terms. It never
// touches resolved records, so identifier derivation stays untouched.
type MetadataCleaner struct {
	titleExpressions []*regexp2.Regexp
	yearExpr         *regexp2.Regexp
}

func NewMetadataCleaner() *MetadataCleaner {
	patterns := []string{
		`(?<title>.+?)\s+(?<enclosed>\(.+\)|\[.+\]|\{.+\})$`,
		`(?<title>.+?)\s+?(?<feat>[\[\(]?(?:feat(?:uring)?|ft)\b\.?)\s*?(?<artists>.+)\s*`,
	}

	compiled := make([]*regexp2.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, regexp2.MustCompile(`(?i)`+pattern, 0))
	}

	return &MetadataCleaner{
		titleExpressions: compiled,
		yearExpr:         regexp2.MustCompile(`(20[0-9]{2}|19[0-9]{2})`, 0),
	}
}

// isLikelyNoise reports whether a parenthetical carries more packaging
// vocabulary and symbols than actual title text.
func (mc *MetadataCleaner) isLikelyNoise(parenText string) bool {
	pt := strings.ToLower(parenText)
	before := len([]rune(pt))

	for _, word := range noiseWords {
		pt = strings.ReplaceAll(pt, word, "")
	}
	pt, _ = mc.yearExpr.Replace(pt, "", -1, -1)
	removed := before - len([]rune(pt))

	letters := 0
	noise := removed
	for _, ch := range pt {
		if strings.ContainsRune(symbolRunes, ch) {
			noise++
		}
		if unicode.IsLetter(ch) {
			letters++
		}
	}

	return noise > letters
}

// balancedBrackets guards against mangling titles with unmatched brackets.
func balancedBrackets(text string) bool {
	pairs := []struct{ open, close string }{
		{"(", ")"}, {"[", "]"}, {"{", "}"},
	}
	for _, pair := range pairs {
		if strings.Count(text, pair.open) != strings.Count(text, pair.close) {
			return false
		}
	}
	return true
}

// CleanTrackName returns the track name with featuring credits and noisy
// parentheticals removed, and whether anything changed.
func (mc *MetadataCleaner) CleanTrackName(text string) (string, bool) {
	text = strings.TrimSpace(text)

	if !balancedBrackets(text) {
		return text, false
	}

	var changed bool
	for _, expr := range mc.titleExpressions {
		match, _ := expr.FindStringMatch(text)
		if match == nil {
			continue
		}

		groups := make(map[string]string)
		for _, name := range expr.GetGroupNames() {
			groups[name] = strings.TrimSpace(match.GroupByName(name).String())
		}

		if enclosed := groups["enclosed"]; enclosed != "" && mc.isLikelyNoise(enclosed) {
			text = groups["title"]
			changed = true
			break
		}
		if feat := groups["feat"]; feat != "" {
			text = groups["title"]
			changed = true
			break
		}
	}

	return strings.TrimSpace(text), changed
}
