package topics

import "strings"

// Combined English and French stoplist used by the vectorizer, keyword
// validation and topic naming. Comment batches on French-language videos are
// common enough that both languages are always active.
var stopwordList = []string{
	// English
	"the", "a", "an", "and", "or", "but", "if", "then", "else", "when",
	"at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "from",
	"up", "down", "in", "out", "on", "off", "over", "under", "again",
	"further", "once", "here", "there", "all", "any", "both", "each",
	"few", "more", "most", "other", "some", "such", "no", "nor", "not",
	"only", "own", "same", "so", "than", "too", "very", "can", "will",
	"just", "should", "could", "would", "now", "this", "that", "these",
	"those", "i", "me", "my", "myself", "we", "our", "ours", "you",
	"your", "yours", "he", "him", "his", "she", "her", "hers", "it",
	"its", "they", "them", "their", "theirs", "what", "which", "who",
	"whom", "is", "are", "was", "were", "be", "been", "being", "have",
	"has", "had", "having", "do", "does", "did", "doing", "am", "because",
	"until", "while", "of", "to", "also", "really", "get", "got",
	"one", "much", "many", "lot", "make", "made", "thing", "things",
	"dont", "cant", "didnt", "youre", "ive", "im", "isnt", "thats",
	// French
	"le", "la", "les", "un", "une", "des", "du", "de", "et", "ou",
	"mais", "donc", "or", "ni", "car", "que", "qui", "quoi", "dont",
	"quand", "comme", "si", "tout", "tous", "toute", "toutes", "ce",
	"cet", "cette", "ces", "mon", "ma", "mes", "ton", "ta", "tes",
	"son", "sa", "ses", "notre", "nos", "votre", "vos", "leur", "leurs",
	"je", "tu", "il", "elle", "nous", "vous", "ils", "elles", "on",
	"moi", "toi", "lui", "eux", "y", "en", "ne", "pas", "plus", "moins",
	"tres", "très", "bien", "mal", "peu", "trop", "aussi", "ainsi",
	"est", "sont", "etait", "était", "suis", "es", "sommes", "etes",
	"êtes", "sera", "serait", "avoir", "ai", "as", "a", "avons", "avez",
	"ont", "avait", "etre", "être", "fait", "faire", "fais", "dans",
	"sur", "sous", "avec", "sans", "pour", "par", "vers", "chez",
	"entre", "jusque", "pendant", "apres", "après", "avant", "alors",
	"cela", "ca", "ça", "ceci", "celui", "celle", "meme", "même",
}

var stopwords = func() map[string]struct{} {
	set := make(map[string]struct{}, len(stopwordList))
	for _, word := range stopwordList {
		set[word] = struct{}{}
	}
	return set
}()

func IsStopword(token string) bool {
	_, ok := stopwords[strings.ToLower(token)]
	return ok
}

// Stopwords returns a copy of the active stoplist.
func Stopwords() []string {
	out := make([]string, len(stopwordList))
	copy(out, stopwordList)
	return out
}
