package textnorm

// Small bilingual (French + English) stop-word list; keeps only meaningful
// terms in the feature space.
var stopWords = map[string]struct{}{
	"a": {}, "and": {}, "are": {}, "au": {}, "aux": {}, "avec": {},
	"ce": {}, "ces": {}, "cet": {}, "cette": {}, "de": {}, "des": {},
	"du": {}, "elle": {}, "elles": {}, "en": {}, "est": {}, "et": {},
	"ils": {}, "is": {}, "la": {}, "le": {}, "les": {}, "mais": {},
	"not": {}, "of": {}, "on": {}, "ou": {}, "par": {}, "pour": {},
	"sans": {}, "se": {}, "son": {}, "sur": {}, "the": {}, "their": {},
	"they": {}, "to": {}, "un": {}, "une": {}, "vous": {},
}

// IsStopWord reports whether token is in the combined French+English stop-word set.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
