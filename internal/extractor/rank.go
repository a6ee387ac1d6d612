package extractor

import (
	"sort"
	"strings"
)

// rank collapses candidates sharing a canonical value, keeping the most
// confident one, and sorts the survivors by descending confidence. Ties
// keep first-seen order.
func rank[T any](cands []Candidate[T], key func(T) string) []Candidate[T] {
	if len(cands) == 0 {
		return nil
	}

	index := make(map[string]int, len(cands))
	out := make([]Candidate[T], 0, len(cands))
	for _, c := range cands {
		k := strings.ToLower(strings.TrimSpace(key(c.Value)))
		if k == "" {
			continue
		}
		if i, ok := index[k]; ok {
			if c.Confidence > out[i].Confidence {
				out[i] = c
			}
			continue
		}
		index[k] = len(out)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
