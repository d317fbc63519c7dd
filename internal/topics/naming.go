package topics

import "strings"

// Words that mark a cluster keyword as a usable display name on its own.
var themeIndicators = []string{
	"quality",
	"memories",
	"emotional",
	"lyrics",
	"performance",
	"appreciation",
	"discovery",
	"feedback",
	"production",
	"engagement",
}

var topicThemes = map[string][]string{
	"content_quality": {"quality", "production", "editing", "camera", "audio", "video"},
	"appreciation":    {"thanks", "thank", "helpful", "amazing", "awesome", "merci"},
	"feedback":        {"feedback", "improve", "improvement", "better", "suggestion"},
	"emotional":       {"emotional", "memories", "feelings", "beautiful", "touching"},
	"music":           {"lyrics", "song", "music", "performance", "voice", "chanson"},
	"discovery":       {"discovery", "found", "algorithm", "recommended", "finally"},
	"engagement":      {"subscribe", "subscribed", "share", "engagement", "liked"},
}

var themeDisplayNames = map[string]string{
	"content_quality": "Content Quality",
	"appreciation":    "Appreciation",
	"feedback":        "Feedback",
	"emotional":       "Emotional Reactions",
	"music":           "Music & Performance",
	"discovery":       "Discovery",
	"engagement":      "Engagement",
}

// DetectTheme scores a text against the known themes and returns the best
// match, or "" when nothing matches.
func DetectTheme(text string) string {
	lowered := strings.ToLower(text)

	bestTheme := ""
	bestScore := 0
	for theme, keywords := range topicThemes {
		score := 0
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && score > 0 && theme < bestTheme) {
			bestTheme = theme
			bestScore = score
		}
	}
	return bestTheme
}

func FormatThemeName(theme string) string {
	if display, ok := themeDisplayNames[theme]; ok {
		return display
	}
	return titleCase(strings.ReplaceAll(theme, "_", " "))
}

// GenerateTopicName picks a display name for a cluster. Priority order, first
// success wins: a non-generic top keyword, the most frequent repeated bigram
// from sampled member texts, the top validated keyword, the raw label, and
// finally a literal fallback.
func GenerateTopicName(rawName string, keywords []string, sampleTexts []string) string {
	lowered := strings.ToLower(rawName)
	if rawName != "" && !strings.HasPrefix(lowered, "topic ") && len(rawName) > 3 {
		for _, indicator := range themeIndicators {
			if strings.Contains(lowered, indicator) {
				return rawName
			}
		}
	}

	if len(sampleTexts) >= 2 {
		if bigram := mostFrequentBigram(sampleTexts); bigram != "" {
			return titleCase(bigram)
		}
	}

	if valid := ValidateKeywords(keywords); len(valid) > 0 {
		return capitalize(valid[0])
	}

	if rawName != "" {
		return capitalize(rawName)
	}

	return "General Discussion"
}

// mostFrequentBigram finds the most common two-word phrase appearing at least
// twice across up to 10 sampled texts.
func mostFrequentBigram(sampleTexts []string) string {
	if len(sampleTexts) > 10 {
		sampleTexts = sampleTexts[:10]
	}

	counts := make(map[string]*termCount)
	position := 0
	for _, text := range sampleTexts {
		tokens := tokenize(text)
		for i := 0; i+1 < len(tokens); i++ {
			bigram := tokens[i] + " " + tokens[i+1]
			if tc, ok := counts[bigram]; ok {
				tc.count++
			} else {
				counts[bigram] = &termCount{term: bigram, count: 1, firstSeen: position}
			}
			position++
		}
	}

	for _, term := range rankTerms(counts) {
		if counts[term].count >= 2 {
			return term
		}
		break // ranked by frequency, nothing later can qualify
	}
	return ""
}
