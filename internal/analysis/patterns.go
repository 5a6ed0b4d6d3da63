package analysis

import (
	"regexp"
	"strings"
)

// Lexical pattern sets behind the friction/delight heuristics. These are
// deliberately small and fixed: the detectors classify surface form only,
// never meaning, and the tests pin each set's behavior.

// Negation and sarcasm forms that disqualify an otherwise-matching praise
// phrase. Always checked before the praise set.
var sarcasmPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)thanks for nothing`),
	regexp.MustCompile(`(?i)\bi'?m done trying\b`),
	regexp.MustCompile(`(?i)\bgreat,\s*another\b`),
	regexp.MustCompile(`(?i)\boh,?\s+(great|wonderful|perfect)\b`),
	regexp.MustCompile(`(?i)\b(doesn'?t|didn'?t|not|never|still doesn'?t)\s+work`),
	regexp.MustCompile(`(?i)\bperfect,\s*just\b`),
}

var praisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bthanks?\b`),
	regexp.MustCompile(`(?i)\bthank you\b`),
	regexp.MustCompile(`(?i)\bperfect\b`),
	regexp.MustCompile(`(?i)\bexcellent\b`),
	regexp.MustCompile(`(?i)\bawesome\b`),
	regexp.MustCompile(`(?i)\bamazing\b`),
	regexp.MustCompile(`(?i)\bwell done\b`),
	regexp.MustCompile(`(?i)\bnice work\b`),
	regexp.MustCompile(`(?i)\bgreat job\b`),
	regexp.MustCompile(`(?i)\blove it\b`),
	regexp.MustCompile(`(?i)\bthat work(s|ed)\b`),
	regexp.MustCompile(`(?i)\bworks now\b`),
	regexp.MustCompile(`(?i)\bexactly what i\b`),
}

// Phrasings of a user steering the assistant back on course.
var correctionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^no[,.\s]`),
	regexp.MustCompile(`(?i)\bthat'?s (not|wrong)\b`),
	regexp.MustCompile(`(?i)\bnot what i\b`),
	regexp.MustCompile(`(?i)\bi meant\b`),
	regexp.MustCompile(`(?i)\bactually[,\s]`),
	regexp.MustCompile(`(?i)\btry again\b`),
	regexp.MustCompile(`(?i)\bundo\b`),
	regexp.MustCompile(`(?i)\brevert\b`),
	regexp.MustCompile(`(?i)\binstead\b`),
	regexp.MustCompile(`(?i)\bwrong file\b`),
	regexp.MustCompile(`(?i)\bstill (broken|failing|wrong)\b`),
}

// Short acknowledgments that don't count as user intervention.
var acknowledgments = map[string]bool{
	"ok":          true,
	"okay":        true,
	"k":           true,
	"kk":          true,
	"y":           true,
	"yes":         true,
	"yep":         true,
	"yeah":        true,
	"sure":        true,
	"go ahead":    true,
	"continue":    true,
	"proceed":     true,
	"do it":       true,
	"thanks":      true,
	"ty":          true,
	"lgtm":        true,
	"sounds good": true,
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// isSarcastic reports whether text hits the negation/sarcasm set.
func isSarcastic(text string) bool {
	return matchesAny(sarcasmPatterns, text)
}

// isPraise applies sarcasm precedence: a praise token inside a negation
// form ("thanks for nothing") is not praise.
func isPraise(text string) bool {
	return !isSarcastic(text) && matchesAny(praisePatterns, text)
}

func isAcknowledgment(text string) bool {
	return acknowledgments[strings.ToLower(strings.TrimSpace(text))]
}

// isTrivialMessage reports whether a user message is too slight to count
// as intervention: under ~10 characters or a bare acknowledgment.
func isTrivialMessage(text string) bool {
	trimmed := strings.TrimSpace(text)
	return len(trimmed) < 10 || isAcknowledgment(trimmed)
}

// isCorrection classifies a user message as steering. The first user
// message of a segment is the task statement, never a correction; that
// exclusion is the caller's to apply.
func isCorrection(text string) bool {
	if matchesAny(correctionPatterns, text) {
		return true
	}
	return len(text) > 50 && !isPraise(text) && !isAcknowledgment(text)
}

var (
	quotedPattern = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	pathPattern   = regexp.MustCompile(`(?:~|\.{1,2})?/[\w.@~/-]+`)
	digitPattern  = regexp.MustCompile(`\d+`)
)

// normalizeError collapses an error message to a signature: quoted strings,
// filesystem paths and numbers become placeholders so the same failure
// with different particulars compares equal. Order matters — quotes may
// contain paths, paths may contain digits.
func normalizeError(text string) string {
	s := quotedPattern.ReplaceAllString(text, "<str>")
	s = pathPattern.ReplaceAllString(s, "<path>")
	s = digitPattern.ReplaceAllString(s, "<n>")
	return strings.ToLower(strings.TrimSpace(s))
}
