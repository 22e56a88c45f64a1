package textnorm

import (
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// MinFuzzyLength is the shortest token length for which one edit is tolerated.
// Shorter tokens ("gin", "gun") collide too easily under a single edit.
const MinFuzzyLength = 5

var distanceParams = levenshtein.NewParams().MaxCost(1)

// TokenMatch reports whether two normalized tokens are equal, or within edit
// distance 1 when both are at least MinFuzzyLength runes long.
func TokenMatch(a, b string) bool {
	if a == b {
		return true
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if min(la, lb) < MinFuzzyLength {
		return false
	}
	if la-lb > 1 || lb-la > 1 {
		return false
	}
	return levenshtein.Distance(a, b, distanceParams) <= 1
}

// Contains reports whether every token of needle (after loose normalization)
// fuzzy-matches a distinct token of haystack. A haystack token satisfies at most
// one needle token, so "old old crow" needs two "old"s on the label.
// An empty needle never matches.
func Contains(haystack []string, needle string) bool {
	needleTokens := Tokens(needle)
	if len(needleTokens) == 0 || len(needleTokens) > len(haystack) {
		return false
	}

	adj := make([][]int, len(needleTokens))
	for i, n := range needleTokens {
		for j, h := range haystack {
			if TokenMatch(n, h) {
				adj[i] = append(adj[i], j)
			}
		}
		if len(adj[i]) == 0 {
			return false
		}
	}

	// Maximum bipartite matching (augmenting paths); every needle token must be matched.
	owner := make([]int, len(haystack))
	for j := range owner {
		owner[j] = -1
	}
	for i := range needleTokens {
		visited := make([]bool, len(haystack))
		if !augment(i, adj, owner, visited) {
			return false
		}
	}
	return true
}

func augment(i int, adj [][]int, owner []int, visited []bool) bool {
	for _, j := range adj[i] {
		if visited[j] {
			continue
		}
		visited[j] = true
		if owner[j] == -1 || augment(owner[j], adj, owner, visited) {
			owner[j] = i
			return true
		}
	}
	return false
}

// MatchedTokens returns the tokens of phrase (loose-normalized, at least minLen runes)
// split into those that fuzzy-match some haystack token and those that do not.
func MatchedTokens(haystack []string, phrase string, minLen int) (matched, missing []string) {
	for _, tok := range Tokens(phrase) {
		if utf8.RuneCountInString(tok) < minLen {
			continue
		}
		found := false
		for _, h := range haystack {
			if TokenMatch(tok, h) {
				found = true
				break
			}
		}
		if found {
			matched = append(matched, tok)
		} else {
			missing = append(missing, tok)
		}
	}
	return matched, missing
}
