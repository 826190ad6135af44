package linkage

// DamerauLevenshteinDistance counts insertions, deletions, substitutions and
// transpositions of adjacent runes. Transposed runes may be edited afterwards
// (unrestricted variant), so "ca" -> "abc" costs 2.
func DamerauLevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	inf := la + lb
	// h is offset by one in both dimensions so row/column 0 hold the sentinel.
	h := make([][]int, la+2)
	for i := range h {
		h[i] = make([]int, lb+2)
	}
	h[0][0] = inf
	for i := 0; i <= la; i++ {
		h[i+1][0] = inf
		h[i+1][1] = i
	}
	for j := 0; j <= lb; j++ {
		h[0][j+1] = inf
		h[1][j+1] = j
	}

	lastRow := map[rune]int{}
	for i := 1; i <= la; i++ {
		lastCol := 0
		for j := 1; j <= lb; j++ {
			k := lastRow[rb[j-1]]
			l := lastCol
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
				lastCol = j
			}
			h[i+1][j+1] = min(
				h[i][j]+cost,
				h[i+1][j]+1,
				h[i][j+1]+1,
				h[k][l]+(i-k-1)+1+(j-l-1),
			)
		}
		lastRow[ra[i-1]] = i
	}
	return h[la+1][lb+1]
}

// DamerauLevenshtein normalizes the distance by the longer input's rune count.
func DamerauLevenshtein(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(DamerauLevenshteinDistance(a, b))/float64(maxLen)
}
