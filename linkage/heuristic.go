package linkage

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// StringSimilarity scores two texts in [0,1].
// Implementations must be pure and symmetric.
type StringSimilarity func(a, b string) float64

const (
	jaroWinklerBoostThreshold = 0.7
	jaroWinklerPrefixSize     = 4
)

// Blended is the default text comparator: the mean of Jaro-Winkler,
// normalized Damerau-Levenshtein and Sørensen-Dice.
var Blended = NewBlend(JaroWinkler, DamerauLevenshtein, SorensenDice)

// NewBlend averages metrics with equal weight. Empty input scores 0 and equal
// input scores 1 before any metric runs. With no metrics only equality counts.
func NewBlend(metrics ...StringSimilarity) StringSimilarity {
	ms := append([]StringSimilarity(nil), metrics...)
	return func(a, b string) float64 {
		if a == "" || b == "" {
			return 0.0
		}
		if a == b {
			return 1.0
		}
		if len(ms) == 0 {
			return 0.0
		}
		var sum float64
		for _, m := range ms {
			sum += m(a, b)
		}
		return sum / float64(len(ms))
	}
}

// Names accepted by ParseMetric.
const (
	MetricBlended            = "blended"
	MetricJaroWinkler        = "jaro_winkler"
	MetricDamerauLevenshtein = "damerau_levenshtein"
	MetricSorensenDice       = "sorensen_dice"
	MetricLevenshtein        = "levenshtein"
)

var ErrUnknownMetric = errors.New("unknown string metric")

// Single metrics are wrapped in NewBlend so empty and equal inputs follow the
// same rules as Blended.
var namedMetrics = map[string]StringSimilarity{
	MetricBlended:            Blended,
	MetricJaroWinkler:        NewBlend(JaroWinkler),
	MetricDamerauLevenshtein: NewBlend(DamerauLevenshtein),
	MetricSorensenDice:       NewBlend(SorensenDice),
	MetricLevenshtein:        NewBlend(Levenshtein),
}

// ParseMetric resolves a metric name. The empty name is MetricBlended.
func ParseMetric(name string) (StringSimilarity, error) {
	if name == "" {
		return Blended, nil
	}
	m, ok := namedMetrics[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	return m, nil
}

// SimilarityOfStrings scores two texts with the default blend.
func SimilarityOfStrings(a, b string) float64 { return Blended(a, b) }

// JaroWinkler works on bytes; the prefix boost applies above a Jaro score of 0.7.
func JaroWinkler(a, b string) float64 {
	return smetrics.JaroWinkler(a, b, jaroWinklerBoostThreshold, jaroWinklerPrefixSize)
}

// Levenshtein is plain edit distance normalized by the longer input.
// It is not part of the default blend.
func Levenshtein(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}
