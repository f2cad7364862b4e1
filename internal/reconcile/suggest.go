package reconcile

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// nearRatio is the edit-distance-over-length ceiling below which two display
// names are flagged as near matches.
const nearRatio = 0.4

// Suggestion flags an accepted item whose display name is suspiciously close
// to an existing item's. Advisory only: classification already accepted it.
type Suggestion struct {
	Item       Item
	Near       Item
	Similarity float64
}

// SuggestNear scans items accepted as unique for display names within a small
// edit distance of an existing item. The exact pass has already run, so exact
// normalized-name matches never appear here. Screens surface these for manual
// review; nothing is merged or discarded on their account.
func SuggestNear(existing, unique []Item) []Suggestion {
	var out []Suggestion
	for _, it := range unique {
		name := strings.ToUpper(strings.TrimSpace(it.DisplayName))
		if name == "" {
			continue
		}
		for _, ex := range existing {
			exName := strings.ToUpper(strings.TrimSpace(ex.DisplayName))
			if exName == "" || exName == name {
				continue
			}
			dist := levenshtein.ComputeDistance(name, exName)
			maxlen := len(name)
			if len(exName) > maxlen {
				maxlen = len(exName)
			}
			ratio := float64(dist) / float64(maxlen)
			if ratio < nearRatio {
				out = append(out, Suggestion{Item: it, Near: ex, Similarity: 1 - ratio})
				break
			}
		}
	}
	return out
}
