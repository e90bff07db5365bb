package summarize

// stopwordsFor returns the stopword set for a Snowball stemmer name.
// Unknown names get an empty set.
func stopwordsFor(stemmer string) map[string]bool {
	list, ok := stopwordLists[stemmer]
	if !ok {
		return map[string]bool{}
	}
	set := make(map[string]bool, len(list))
	for _, w := range list {
		set[w] = true
	}
	return set
}

var stopwordLists = map[string][]string{
	"english": {
		"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
		"any", "are", "as", "at", "be", "because", "been", "before", "being", "below",
		"between", "both", "but", "by", "can", "could", "did", "do", "does", "doing",
		"down", "during", "each", "few", "for", "from", "further", "had", "has", "have",
		"having", "he", "her", "here", "hers", "herself", "him", "himself", "his", "how",
		"i", "if", "in", "into", "is", "it", "its", "itself", "just", "like", "me",
		"more", "most", "my", "myself", "no", "nor", "not", "now", "of", "off", "on",
		"once", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own",
		"really", "same", "she", "should", "so", "some", "such", "than", "that", "the",
		"their", "theirs", "them", "themselves", "then", "there", "these", "they",
		"this", "those", "through", "to", "too", "um", "uh", "under", "until", "up",
		"very", "was", "we", "were", "what", "when", "where", "which", "while", "who",
		"whom", "why", "will", "with", "would", "yeah", "you", "your", "yours",
		"yourself", "yourselves",
	},
	"french": {
		"au", "aux", "avec", "ce", "ces", "cette", "dans", "de", "des", "du", "elle",
		"en", "et", "eux", "il", "ils", "je", "la", "le", "les", "leur", "lui", "ma",
		"mais", "me", "mes", "moi", "mon", "ne", "nos", "notre", "nous", "on", "ou",
		"par", "pas", "pour", "qu", "que", "qui", "sa", "se", "ses", "son", "sur", "ta",
		"te", "tes", "toi", "ton", "tu", "un", "une", "vos", "votre", "vous", "est",
		"sont", "été", "être", "avoir", "a", "ont", "c'est", "ça", "y",
	},
	"spanish": {
		"a", "al", "algo", "como", "con", "de", "del", "el", "ella", "ellos", "en",
		"es", "esta", "este", "esto", "ha", "la", "las", "le", "les", "lo", "los", "más",
		"me", "mi", "muy", "no", "nos", "o", "para", "pero", "por", "que", "se", "si",
		"sin", "su", "sus", "también", "te", "tu", "un", "una", "uno", "y", "ya", "yo",
	},
	"russian": {
		"и", "в", "во", "не", "что", "он", "на", "я", "с", "со", "как", "а", "то", "все",
		"она", "так", "его", "но", "да", "ты", "к", "у", "же", "вы", "за", "бы", "по",
		"только", "ее", "мне", "было", "вот", "от", "меня", "еще", "нет", "о", "из",
		"ему", "это",
	},
	"swedish": {
		"och", "det", "att", "i", "en", "jag", "hon", "som", "han", "på", "den", "med",
		"var", "sig", "för", "så", "till", "är", "men", "ett", "om", "hade", "de", "av",
		"icke", "mig", "du", "henne", "då", "sin", "nu", "har", "inte", "hans", "honom",
	},
}
