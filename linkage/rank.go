package linkage

import "sort"

// Match is a scored pair of record ids.
type Match struct {
	Left  string  `json:"left"`
	Right string  `json:"right"`
	Score float64 `json:"score"`
}

// Rank scores target against each candidate and keeps scores at or above
// threshold, best first. A candidate sharing target's id is skipped.
func (e *Engine) Rank(target Record, candidates []Record, threshold float64) []Match {
	out := []Match{}
	for _, c := range candidates {
		if target.ID != "" && c.ID == target.ID {
			continue
		}
		if s := e.Similarity(target, c); s >= threshold {
			out = append(out, Match{Left: target.ID, Right: c.ID, Score: s})
		}
	}
	sortMatches(out)
	return out
}

// Pairs scores every unordered pair in records and keeps scores at or above threshold.
func (e *Engine) Pairs(records []Record, threshold float64) []Match {
	out := []Match{}
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if s := e.Similarity(records[i], records[j]); s >= threshold {
				out = append(out, Match{Left: records[i].ID, Right: records[j].ID, Score: s})
			}
		}
	}
	sortMatches(out)
	return out
}

func sortMatches(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Score != ms[j].Score {
			return ms[i].Score > ms[j].Score
		}
		if ms[i].Left != ms[j].Left {
			return ms[i].Left < ms[j].Left
		}
		return ms[i].Right < ms[j].Right
	})
}
