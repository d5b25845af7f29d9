package fuzzyfinder

import "github.com/lithammer/fuzzysearch/fuzzy"

type Rank struct {
	// Source is used as the source for matching.
	Source string

	// Target is the word matched against.
	Target string

	// Distance is the Levenshtein distance between Source and Target.
	Distance int

	// Location of Target in original list
	OriginalIndex int
}

// RankFindFold matches query against keys case-insensitively and returns
// matches ordered by the original key list. Node palette and macro search
// both go through here so ranking behaves the same everywhere.
func RankFindFold(keys []string, query string) []Rank {
	ranksLib := fuzzy.RankFindFold(query, keys)
	ranks := make([]Rank, ranksLib.Len())
	for i, r := range ranksLib {
		ranks[i] = Rank{
			Source:        r.Source,
			Target:        r.Target,
			Distance:      r.Distance,
			OriginalIndex: r.OriginalIndex,
		}
	}
	return ranks
}

// MatchFold reports whether the query fuzzily matches the key.
func MatchFold(key, query string) bool {
	return fuzzy.MatchFold(query, key)
}
