package ciqual

import (
	"regexp"
	"strings"
)

var punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// frenchStopWords are articles, prepositions and table noise that carry no
// signal when matching food names ("Pomme, crue", "Lait demi-écrémé UHT").
var frenchStopWords = map[string]bool{
	"a": true, "au": true, "aux": true, "avec": true, "ce": true,
	"de": true, "des": true, "du": true, "en": true, "et": true,
	"la": true, "le": true, "les": true, "ou": true, "par": true,
	"pour": true, "sans": true, "sur": true, "un": true, "une": true,
	// preparation noise common in CIQUAL names
	"crue": true, "cru": true, "cuite": true, "cuit": true,
	"preemballe": true, "appertise": true, "moyenne": true,
}

// foldAccents maps French accented characters to their ASCII base so that
// "écrémé" and "ecreme" tokenize identically.
var foldAccents = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c",
	"œ", "oe",
)

// normalize lowercases, folds accents and strips punctuation
func normalize(s string) string {
	s = strings.ToLower(s)
	s = foldAccents.Replace(s)
	return punctuationRegex.ReplaceAllString(s, " ")
}

// tokenize splits a food name or query into normalized tokens, dropping
// stop words and single characters
func tokenize(s string) []string {
	words := strings.Fields(normalize(s))

	var tokens []string
	for _, word := range words {
		if len(word) <= 1 {
			continue
		}
		if frenchStopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// matchScore computes similarity between a query and a food name on a 0-100
// scale. Query coverage dominates: a user typing "pomme" should match
// "Pomme, crue" strongly even though the name has extra tokens.
func matchScore(queryTokens []string, query, foodName string) float64 {
	nameTokens := tokenize(foodName)
	if len(queryTokens) == 0 || len(nameTokens) == 0 {
		return 0
	}

	queryMatched := intersectionCount(queryTokens, nameTokens)
	if queryMatched == 0 {
		return 0
	}
	queryCoverage := float64(queryMatched) / float64(len(queryTokens))

	nameMatched := intersectionCount(nameTokens, queryTokens)
	nameCoverage := float64(nameMatched) / float64(len(nameTokens))

	score := (queryCoverage*0.70 + nameCoverage*0.30) * 100

	// Exact substring bonus: "yaourt nature" inside "Yaourt nature, au lait entier"
	queryNorm := strings.TrimSpace(normalize(query))
	nameNorm := strings.TrimSpace(normalize(foodName))
	if len(queryNorm) > 3 && strings.Contains(nameNorm, queryNorm) {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// intersectionCount returns how many tokens of a also appear in b
func intersectionCount(a, b []string) int {
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[t] = true
	}

	count := 0
	seen := make(map[string]bool, len(a))
	for _, t := range a {
		if set[t] && !seen[t] {
			count++
			seen[t] = true
		}
	}
	return count
}
