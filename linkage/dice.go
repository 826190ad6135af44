package linkage

type bigram [2]rune

// SorensenDice is the Dice coefficient over rune bigrams, counted as a multiset.
// Inputs shorter than two runes score 0 unless equal.
func SorensenDice(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0.0
	}

	counts := make(map[bigram]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		counts[bigram{ra[i], ra[i+1]}]++
	}
	shared := 0
	for i := 0; i < len(rb)-1; i++ {
		bg := bigram{rb[i], rb[i+1]}
		if counts[bg] > 0 {
			counts[bg]--
			shared++
		}
	}
	return 2.0 * float64(shared) / float64(len(ra)-1+len(rb)-1)
}
