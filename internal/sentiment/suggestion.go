package sentiment

import (
	"regexp"
	"strings"
)

// Suggestion surface forms. English and French patterns are matched against
// the lowercased text; suggestion intent is independent of valence and is
// checked before any sentiment scoring.
var suggestionPatterns = []*regexp.Regexp{
	// English
	regexp.MustCompile(`\bshould\b`),
	regexp.MustCompile(`\bcould\b`),
	regexp.MustCompile(`\b(please|pls|plz)\b`),
	regexp.MustCompile(`\bwould be (nice|great|awesome|cool|better)\b`),
	regexp.MustCompile(`\bi (wish|hope)\b`),
	regexp.MustCompile(`\bsuggest`),
	regexp.MustCompile(`\bfeature request\b`),
	regexp.MustCompile(`\b(can|could|will) you\b`),
	regexp.MustCompile(`\bnext (video|time)\b`),
	regexp.MustCompile(`\bconsider (adding|making|doing|covering)\b`),
	regexp.MustCompile(`\brequest\b.*\bvideo\b`),
	// French
	regexp.MustCompile(`\bpourriez[- ]vous\b`),
	regexp.MustCompile(`\bpourrais[- ]tu\b`),
	regexp.MustCompile(`\bpeux[- ]tu\b`),
	regexp.MustCompile(`\bce serait (bien|genial|génial|super|cool)\b`),
	regexp.MustCompile(`\bje (propose|suggere|suggère)\b`),
	regexp.MustCompile(`\bil faudrait\b`),
	regexp.MustCompile(`\btu devrais\b`),
	regexp.MustCompile(`\bvous devriez\b`),
	regexp.MustCompile(`\bprochaine (video|vidéo)\b`),
	regexp.MustCompile(`\bs'il (te|vous) pla[iî]t\b`),
	regexp.MustCompile(`\b(svp|stp)\b`),
}

// IsSuggestion reports whether a comment reads as a request or recommendation
// for future content or changes. Pure and deterministic; case-insensitive.
func IsSuggestion(text string) bool {
	lowered := strings.ToLower(text)
	for _, pattern := range suggestionPatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}
	return false
}
