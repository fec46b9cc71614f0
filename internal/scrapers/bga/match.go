package bga

import (
	"gaiaharvest/pkg/textutil"

	"github.com/antzucaro/matchr"
)

// minNameSimilarity is the lowest Jaro-Winkler similarity BestPlayerMatch accepts.
const minNameSimilarity = 0.85

// BestPlayerMatch picks the search result that most likely is `name`. An exact
// (normalized) match always wins, otherwise the closest name above
// minNameSimilarity is returned.
func BestPlayerMatch(name string, candidates []PlayerRef) (PlayerRef, bool) {
	target := textutil.NormalizeName(name)
	if target == "" {
		return PlayerRef{}, false
	}

	for _, c := range candidates {
		if textutil.NormalizeName(c.Name) == target {
			return c, true
		}
	}

	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		score := matchr.JaroWinkler(target, textutil.NormalizeName(c.Name), false)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 || bestScore < minNameSimilarity {
		return PlayerRef{}, false
	}
	return candidates[best], true
}
